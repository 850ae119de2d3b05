package index

import "time"

// Document is one indexed web page, keyed by URL. The crawler submits
// (url, title, description) triples; resubmitting an existing URL with
// changed content updates the row and refreshes LastFetched.
type Document struct {
	URL         string    `bson:"url" json:"url"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	LastFetched time.Time `bson:"last_fetched" json:"last_fetched"`
}
