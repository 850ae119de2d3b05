package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Small submission tool for crawlers: pushes one (url, title, description)
// triple to a running API instance.
func main() {
	api := flag.String("api", envOr("WOLFEYE_API", "http://localhost:5000"), "base URL of the search API")
	token := flag.String("token", os.Getenv("WOLFEYE_TOKEN"), "access token")
	pageURL := flag.String("url", "", "URL of the crawled page")
	title := flag.String("title", "", "page title")
	description := flag.String("description", "", "page description")
	flag.Parse()

	if *token == "" || *pageURL == "" || *title == "" {
		flag.Usage()
		os.Exit(2)
	}

	body, err := json.Marshal(map[string]string{
		"token":       *token,
		"url":         *pageURL,
		"title":       *title,
		"description": *description,
	})
	if err != nil {
		log.Fatal(err)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Post(*api+"/api/crawler/add", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("submit failed: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("%d %s\n", resp.StatusCode, out)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
