package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/deal-drive/site/observability"
)

const defaultQueryBy = "title,vehicle_info.make,vehicle_info.model"

// ErrNotFound is returned when a listing id is not in the index.
var ErrNotFound = errors.New("listing not found")

// Typesense queries a Typesense collection of listings.
type Typesense struct {
	client     *typesense.Client
	collection string
	queryBy    string
}

// NewTypesense creates a client for the given server and collection.
func NewTypesense(serverURL, apiKey, collection string, timeout time.Duration) *Typesense {
	client := typesense.NewClient(
		typesense.WithServer(serverURL),
		typesense.WithAPIKey(apiKey),
		typesense.WithConnectionTimeout(timeout),
	)
	return &Typesense{client: client, collection: collection, queryBy: defaultQueryBy}
}

// Collection is the name of the searched collection.
func (t *Typesense) Collection() string {
	return t.collection
}

// Search runs one page of q.
func (t *Typesense) Search(ctx context.Context, q Query) (Page, error) {
	ctx, span := observability.Tracer().Start(ctx, "typesense.search")
	defer span.End()

	page := q.Page
	if page < 1 {
		page = 1
	}

	text := q.Text
	if text == "" {
		text = "*"
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(text),
		QueryBy: pointer.String(t.queryBy),
		Page:    pointer.Int(page),
		PerPage: pointer.Int(PerPage),
	}
	if q.Filter != "" {
		params.FilterBy = pointer.String(q.Filter)
	}
	if by := SortBy(q.Sort); by != "" {
		params.SortBy = pointer.String(by)
	}

	span.SetAttributes(
		attribute.String("search.selector", SortSelector(t.collection, q.Sort)),
		attribute.String("search.filter", q.Filter),
		attribute.Int("search.page", page),
	)

	res, err := t.client.Collection(t.collection).Documents().Search(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Page{}, fmt.Errorf("failed to search %s: %w", t.collection, err)
	}

	result := pageFromResult(res, page)
	observability.LoggerFromContext(ctx).Debug().
		Str("component", "search").
		Str("selector", SortSelector(t.collection, q.Sort)).
		Str("filter", q.Filter).
		Int("page", result.Number).
		Int("hits", len(result.Hits)).
		Int("found", result.Total).
		Msg("search page")
	return result, nil
}

// Get fetches one listing by id.
func (t *Typesense) Get(ctx context.Context, id string) (Hit, error) {
	ctx, span := observability.Tracer().Start(ctx, "typesense.get")
	defer span.End()

	doc, err := t.client.Collection(t.collection).Document(id).Retrieve(ctx)
	if err != nil {
		var httpErr *typesense.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == 404 {
			return Hit{}, ErrNotFound
		}
		span.RecordError(err)
		return Hit{}, fmt.Errorf("failed to retrieve listing %s: %w", id, err)
	}

	hit, ok := NormalizeHit(doc)
	if !ok {
		return Hit{}, ErrNotFound
	}
	return hit, nil
}

// Health reports whether the server answers its health endpoint.
func (t *Typesense) Health(ctx context.Context) error {
	ok, err := t.client.Health(ctx, 2*time.Second)
	if err != nil {
		return fmt.Errorf("typesense health check failed: %w", err)
	}
	if !ok {
		return errors.New("typesense reports unhealthy")
	}
	return nil
}

// EnsureCollection creates the listings collection when it does not exist.
// Used for local development; production indexes are owned upstream.
func (t *Typesense) EnsureCollection(ctx context.Context) (bool, error) {
	if _, err := t.client.Collection(t.collection).Retrieve(ctx); err == nil {
		return false, nil
	}

	schema := &api.CollectionSchema{
		Name: t.collection,
		Fields: []api.Field{
			{Name: "title", Type: "string"},
			{Name: FieldPrice, Type: "int32", Optional: pointer.True()},
			{Name: "images", Type: "string[]", Optional: pointer.True(), Index: pointer.False()},
			{Name: FieldMake, Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: FieldModel, Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: FieldYear, Type: "int32", Facet: pointer.True(), Optional: pointer.True()},
			{Name: FieldMileage, Type: "int32", Optional: pointer.True()},
			{Name: "vehicle_info.color", Type: "string", Optional: pointer.True()},
			{Name: "vehicle_info.vin", Type: "string", Optional: pointer.True()},
			{Name: "location", Type: "string", Optional: pointer.True()},
			{Name: FieldGeo, Type: "geopoint", Optional: pointer.True()},
			{Name: FieldTimestamp, Type: "int64"},
			{Name: "source_link", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "source_id", Type: "string", Optional: pointer.True()},
			{Name: FieldSource, Type: "string", Facet: pointer.True()},
		},
		DefaultSortingField: pointer.String(FieldTimestamp),
		EnableNestedFields:  pointer.True(),
	}

	if _, err := t.client.Collections().Create(ctx, schema); err != nil {
		return false, fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return true, nil
}

// pageFromResult converts a search response. The page is last when the
// hits seen so far reach the found count or the page came back short.
func pageFromResult(res *api.SearchResult, requested int) Page {
	page := Page{Number: requested}
	if res == nil {
		page.LastPage = true
		return page
	}
	if res.Page != nil && *res.Page > 0 {
		page.Number = *res.Page
	}
	if res.Found != nil {
		page.Total = *res.Found
	}

	if res.Hits != nil {
		for _, h := range *res.Hits {
			if h.Document == nil {
				continue
			}
			if hit, ok := NormalizeHit(*h.Document); ok {
				page.Hits = append(page.Hits, hit)
			}
		}
	}

	raw := 0
	if res.Hits != nil {
		raw = len(*res.Hits)
	}
	page.LastPage = page.Number*PerPage >= page.Total || raw < PerPage
	return page
}
