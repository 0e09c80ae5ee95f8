package search

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned when a session generation has expired or
// never existed.
var ErrSessionNotFound = errors.New("search session not found")

// Status is a step of the search session state machine.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusLoadingMore Status = "loading_more"
	StatusReady       Status = "ready"
	StatusExhausted   Status = "exhausted"
	StatusEmpty       Status = "empty"
)

// Session is the accumulated state of one result stream. A new generation
// starts whenever the query, filter or sort changes.
type Session struct {
	Query      Query    `json:"query"`
	Key        string   `json:"key"`
	Generation int64    `json:"generation"`
	NextPage   int      `json:"next_page"`
	Seen       []string `json:"seen"`
	Total      int      `json:"total"`
	LastPage   bool     `json:"last_page"`
	Status     Status   `json:"status"`
	Err        string   `json:"err,omitempty"`
}

// HasMore reports whether another page may be requested.
func (s Session) HasMore() bool {
	return !s.LastPage && s.Status == StatusReady
}

// SessionStore keeps sessions between requests, keyed by browser session id
// and generation.
type SessionStore interface {
	// NextGeneration starts a new generation for sid and returns it.
	NextGeneration(ctx context.Context, sid string) (int64, error)
	// CurrentGeneration returns the latest generation for sid, or 0.
	CurrentGeneration(ctx context.Context, sid string) (int64, error)
	Load(ctx context.Context, sid string, gen int64) (*Session, error)
	Save(ctx context.Context, sid string, s *Session) error
	// Acquire takes the in-flight fetch lock for a generation. It returns
	// false when another fetch holds it.
	Acquire(ctx context.Context, sid string, gen int64) (bool, error)
	Release(ctx context.Context, sid string, gen int64) error
}
