// Package search provides the web search port used by the researcher step
// and a Tavily REST implementation.
package search

import (
	"context"
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Client is the search port. Implementations return at most maxResults hits.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
