// Package search compiles filter criteria into hosted search queries and
// pages through the results.
package search

import (
	"context"
	"fmt"

	"github.com/deal-drive/site/config"
	"github.com/deal-drive/site/filter"
)

// PerPage is the fixed number of hits requested per page.
const PerPage = config.SearchPageSize

// Query is one request against the hosted index.
type Query struct {
	Text   string      `json:"text"`
	Filter string      `json:"filter"`
	Sort   filter.Sort `json:"sort"`
	Page   int         `json:"page"`
}

// NewQuery compiles criteria into a first-page query.
func NewQuery(s filter.State, compiled string) Query {
	return Query{Text: s.Query, Filter: compiled, Sort: s.Sort, Page: 1}
}

// Key identifies the result set of q independent of the page. Two queries
// with different keys never share accumulated results.
func (q Query) Key() string {
	return fmt.Sprintf("%s|%s|%s", q.Text, q.Filter, q.Sort)
}

// WithPage returns a copy of q for another page.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

// Page is one page of ranked hits.
type Page struct {
	Hits     []Hit
	Number   int
	Total    int
	LastPage bool
}

// Searcher runs queries against the hosted index.
type Searcher interface {
	Search(ctx context.Context, q Query) (Page, error)
}

// Finder looks up a single listing by id.
type Finder interface {
	Get(ctx context.Context, id string) (Hit, error)
}
