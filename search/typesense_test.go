package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/deal-drive/site/filter"
)

func resultWith(found, page, n int) *api.SearchResult {
	hits := make([]api.SearchResultHit, n)
	for i := range hits {
		doc := map[string]interface{}{
			"id":    fmt.Sprintf("doc-%d", i),
			"title": "2015 Honda Civic",
		}
		hits[i] = api.SearchResultHit{Document: &doc}
	}
	return &api.SearchResult{Found: pointer.Int(found), Page: pointer.Int(page), Hits: &hits}
}

func TestPageFromResult(t *testing.T) {
	tests := []struct {
		name      string
		res       *api.SearchResult
		requested int
		wantHits  int
		wantLast  bool
	}{
		{"full first page", resultWith(45, 1, PerPage), 1, PerPage, false},
		{"short final page", resultWith(45, 3, 5), 3, 5, true},
		{"exact final page", resultWith(40, 2, PerPage), 2, PerPage, true},
		{"no results", resultWith(0, 1, 0), 1, 0, true},
		{"nil response", nil, 4, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := pageFromResult(tt.res, tt.requested)
			assert.Len(t, page.Hits, tt.wantHits)
			assert.Equal(t, tt.wantLast, page.LastPage)
			assert.Equal(t, tt.requested, page.Number)
		})
	}
}

func TestPageFromResultSkipsUnusableDocuments(t *testing.T) {
	good := map[string]interface{}{"id": "a", "title": "Tacoma"}
	noID := map[string]interface{}{"title": "orphan"}
	hits := []api.SearchResultHit{{Document: &good}, {Document: &noID}, {}}

	page := pageFromResult(&api.SearchResult{Found: pointer.Int(3), Hits: &hits}, 1)
	require.Len(t, page.Hits, 1)
	assert.Equal(t, "a", page.Hits[0].ID)
	assert.Equal(t, 3, page.Total)
}

func TestTypesenseSearch(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/listings/documents/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-TYPESENSE-API-KEY"))
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"found": 2,
			"page":  1,
			"hits": []map[string]any{
				{"document": map[string]any{"id": "1", "title": "2015 Honda Civic", "product_price": 12500}},
				{"document": map[string]any{"id": "2", "title": "2018 Honda Civic", "product_price": 17900}},
			},
		})
	}))
	defer server.Close()

	ts := NewTypesense(server.URL, "test-key", "listings", 2*time.Second)
	page, err := ts.Search(context.Background(), Query{
		Text:   "civic",
		Filter: "product_price:>=1000",
		Sort:   filter.Newest,
		Page:   1,
	})
	require.NoError(t, err)

	assert.Equal(t, "civic", got["q"])
	assert.Equal(t, "product_price:>=1000", got["filter_by"])
	assert.Equal(t, "timestamp:desc", got["sort_by"])
	assert.Equal(t, fmt.Sprint(PerPage), got["per_page"])

	require.Len(t, page.Hits, 2)
	assert.Equal(t, 2, page.Total)
	assert.True(t, page.LastPage)
	assert.Equal(t, 12500, page.Hits[0].Price)
}

func TestTypesenseSearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"Not Ready or Lagging"}`))
	}))
	defer server.Close()

	ts := NewTypesense(server.URL, "test-key", "listings", 2*time.Second)
	_, err := ts.Search(context.Background(), Query{Text: "civic", Page: 1})
	assert.Error(t, err)
}

func TestTypesenseGetNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Could not find a document with id: 404"}`))
	}))
	defer server.Close()

	ts := NewTypesense(server.URL, "test-key", "listings", 2*time.Second)
	_, err := ts.Get(context.Background(), "404")
	assert.ErrorIs(t, err, ErrNotFound)
}
