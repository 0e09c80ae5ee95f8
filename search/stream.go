package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/deal-drive/site/observability"
)

// Result is the outcome of one Start or RequestMore call.
type Result struct {
	Session Session
	// Hits are the newly fetched hits, deduplicated against the session.
	Hits []Hit
	// Stale is set when the generation was superseded before the response
	// could be applied. Nothing was appended.
	Stale bool
	// Busy is set when another fetch for the same generation is in flight.
	Busy bool
}

// Stream pages through results for one browser session at a time, in page
// order, without repeating a listing.
type Stream struct {
	searcher Searcher
	store    SessionStore
}

// NewStream creates a stream reading from searcher and keeping state in store.
func NewStream(searcher Searcher, store SessionStore) *Stream {
	return &Stream{searcher: searcher, store: store}
}

// Start begins a new result set for q, discarding whatever sid had
// accumulated before, and fetches its first page.
func (s *Stream) Start(ctx context.Context, sid string, q Query) (Result, error) {
	gen, err := s.store.NextGeneration(ctx, sid)
	if err != nil {
		return Result{}, err
	}

	q = q.WithPage(1)
	sess := &Session{
		Query:      q,
		Key:        q.Key(),
		Generation: gen,
		NextPage:   1,
		Status:     StatusLoading,
	}
	if err := s.store.Save(ctx, sid, sess); err != nil {
		return Result{}, err
	}

	if _, err := s.store.Acquire(ctx, sid, gen); err != nil {
		return Result{}, err
	}
	defer s.release(ctx, sid, gen)

	return s.fetch(ctx, sid, sess)
}

// RequestMore fetches the next page of generation gen. It does nothing when
// the last page was already seen, and reports Busy when a fetch for the same
// generation is already running.
func (s *Stream) RequestMore(ctx context.Context, sid string, gen int64) (Result, error) {
	current, err := s.store.CurrentGeneration(ctx, sid)
	if err != nil {
		return Result{}, err
	}
	if current != gen {
		return Result{Stale: true}, nil
	}

	sess, err := s.store.Load(ctx, sid, gen)
	if err != nil {
		return Result{}, err
	}
	if sess.LastPage {
		return Result{Session: *sess}, nil
	}

	ok, err := s.store.Acquire(ctx, sid, gen)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Session: *sess, Busy: true}, nil
	}
	defer s.release(ctx, sid, gen)

	// Reload under the lock so a page applied by the previous holder is
	// not fetched again.
	if sess, err = s.store.Load(ctx, sid, gen); err != nil {
		return Result{}, err
	}
	if sess.LastPage {
		return Result{Session: *sess}, nil
	}

	sess.Status = StatusLoadingMore
	return s.fetch(ctx, sid, sess)
}

// Session returns the stored state of a generation.
func (s *Stream) Session(ctx context.Context, sid string, gen int64) (*Session, error) {
	return s.store.Load(ctx, sid, gen)
}

func (s *Stream) fetch(ctx context.Context, sid string, sess *Session) (Result, error) {
	page, searchErr := s.searcher.Search(ctx, sess.Query.WithPage(sess.NextPage))

	current, err := s.store.CurrentGeneration(ctx, sid)
	if err != nil {
		return Result{}, err
	}
	if current != sess.Generation {
		observability.LoggerFromContext(ctx).Debug().
			Str("component", "search").
			Int64("generation", sess.Generation).
			Int64("current", current).
			Msg("discarding stale page")
		return Result{Stale: true}, nil
	}

	if searchErr != nil {
		sess.Err = searchErr.Error()
		if sess.NextPage > 1 {
			sess.Status = StatusReady
		} else {
			sess.Status = StatusIdle
		}
		if err := s.store.Save(ctx, sid, sess); err != nil {
			return Result{}, errors.Join(searchErr, err)
		}
		return Result{Session: *sess}, fmt.Errorf("search page %d: %w", sess.NextPage, searchErr)
	}

	fresh := Dedup(page.Hits, sess.Seen)
	for _, h := range fresh {
		sess.Seen = append(sess.Seen, h.ID)
	}

	sess.Total = page.Total
	sess.LastPage = page.LastPage || len(page.Hits) == 0
	sess.NextPage++
	sess.Err = ""
	switch {
	case sess.LastPage && len(sess.Seen) == 0:
		sess.Status = StatusEmpty
	case sess.LastPage:
		sess.Status = StatusExhausted
	default:
		sess.Status = StatusReady
	}

	if err := s.store.Save(ctx, sid, sess); err != nil {
		return Result{}, err
	}
	return Result{Session: *sess, Hits: fresh}, nil
}

func (s *Stream) release(ctx context.Context, sid string, gen int64) {
	if err := s.store.Release(context.WithoutCancel(ctx), sid, gen); err != nil {
		observability.LoggerFromContext(ctx).Warn().Str("component", "search").Err(err).Msg("release lock")
	}
}

// Dedup returns the hits whose ids are not in seen and not repeated within
// hits, in their original order.
func Dedup(hits []Hit, seen []string) []Hit {
	known := make(map[string]struct{}, len(seen)+len(hits))
	for _, id := range seen {
		known[id] = struct{}{}
	}

	var out []Hit
	for _, h := range hits {
		if _, dup := known[h.ID]; dup {
			continue
		}
		known[h.ID] = struct{}{}
		out = append(out, h)
	}
	return out
}
