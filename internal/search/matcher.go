package search

import (
	"context"
	"errors"
	"strings"

	"github.com/wolfeye/wolfeye-api/internal/index"
)

var ErrEmptyQuery = errors.New("search: empty query")

// Result is the per-query projection of a matched document.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Matcher answers a free-text query with a deduplicated, order-preserving
// list of matching documents. Matching is case-insensitive substring
// containment (see index.Repository); there is no relevance ranking, the
// output order is pass order then store iteration order.
type Matcher struct {
	docs index.Repository
}

func NewMatcher(docs index.Repository) *Matcher {
	return &Matcher{docs: docs}
}

// Match runs up to five passes over the document store, each paged with
// index.PageSize:
//
//  1. documents whose title contains the full query
//
// then for each whitespace-separated shard of the query, in shard order:
//
//  2. title contains the shard
//  3. url contains the shard
//  4. description contains the shard
//  5. url contains the shard again, only when nothing matched so far
//
// The first pass to see a url wins; later passes never update its
// title/description snapshot.
func (m *Matcher) Match(ctx context.Context, query string, page int) ([]Result, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if page < 0 {
		page = 0
	}

	results := []Result{}
	seen := make(map[string]struct{})
	collect := func(docs []index.Document) {
		for _, d := range docs {
			if _, ok := seen[d.URL]; ok {
				continue
			}
			seen[d.URL] = struct{}{}
			results = append(results, Result{Title: d.Title, URL: d.URL, Description: d.Description})
		}
	}

	docs, err := m.docs.FindBySubstring(ctx, index.FieldTitle, query, page)
	if err != nil {
		return nil, err
	}
	collect(docs)

	for _, shard := range strings.Fields(query) {
		docs, err = m.docs.FindBySubstring(ctx, index.FieldTitle, shard, page)
		if err != nil {
			return nil, err
		}
		collect(docs)

		docs, err = m.docs.FindBySubstring(ctx, index.FieldURL, shard, page)
		if err != nil {
			return nil, err
		}
		collect(docs)

		docs, err = m.docs.FindBySubstring(ctx, index.FieldDescription, shard, page)
		if err != nil {
			return nil, err
		}
		collect(docs)

		// last-resort url pass, evaluated only while the result is empty
		if len(results) == 0 {
			docs, err = m.docs.FindBySubstring(ctx, index.FieldURL, shard, page)
			if err != nil {
				return nil, err
			}
			collect(docs)
		}
	}

	return results, nil
}
