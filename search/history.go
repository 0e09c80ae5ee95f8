package search

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserSearch is one remembered query of a signed-in user.
type UserSearch struct {
	ID          int       `db:"id"`
	UserID      string    `db:"user_id"`
	QueryString string    `db:"query_string"`
	CreatedAt   time.Time `db:"created_at"`
}

// TopSearch is a popular query with its count.
type TopSearch struct {
	QueryString string `db:"query_string"`
	Count       int    `db:"count"`
}

// History stores recent free-text queries per user.
type History struct {
	db *sqlx.DB
}

// NewHistory creates a history backed by db.
func NewHistory(db *sqlx.DB) *History {
	return &History{db: db}
}

// Save records a query, moving a repeat of an older one to the top.
func (h *History) Save(ctx context.Context, userID, query string) error {
	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM UserSearch WHERE user_id = ? AND query_string = ?", userID, query); err != nil {
		return fmt.Errorf("failed to replace user search: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO UserSearch (user_id, query_string) VALUES (?, ?)", userID, query); err != nil {
		return fmt.Errorf("failed to save user search: %w", err)
	}
	return tx.Commit()
}

// Recent returns a user's latest queries, newest first.
func (h *History) Recent(ctx context.Context, userID string, limit int) ([]UserSearch, error) {
	var searches []UserSearch
	err := h.db.SelectContext(ctx, &searches,
		"SELECT id, user_id, query_string, created_at FROM UserSearch WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	return searches, nil
}

// Delete removes one entry owned by userID.
func (h *History) Delete(ctx context.Context, id int, userID string) error {
	if _, err := h.db.ExecContext(ctx, "DELETE FROM UserSearch WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return fmt.Errorf("failed to delete user search: %w", err)
	}
	return nil
}

// DeleteAll clears a user's history.
func (h *History) DeleteAll(ctx context.Context, userID string) error {
	if _, err := h.db.ExecContext(ctx, "DELETE FROM UserSearch WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete all user searches: %w", err)
	}
	return nil
}

// Top returns the most frequent queries across all users.
func (h *History) Top(ctx context.Context, limit int) ([]TopSearch, error) {
	var top []TopSearch
	err := h.db.SelectContext(ctx, &top,
		"SELECT query_string, COUNT(*) as count FROM UserSearch GROUP BY query_string ORDER BY count DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top searches: %w", err)
	}
	return top, nil
}

// PruneOlderThan deletes entries created before cutoff.
func (h *History) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx, "DELETE FROM UserSearch WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune user searches: %w", err)
	}
	return res.RowsAffected()
}
