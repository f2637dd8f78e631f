// Package admin provides administrative operations on the PostgreSQL database.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	db "github.com/JonMunkholm/colo/internal/database"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// Counts is the number of rows per table.
type Counts struct {
	Sessions    int64 `json:"sessions"`
	Children    int64 `json:"children"`
	Memberships int64 `json:"memberships"`
}

// Admin runs maintenance queries.
type Admin struct {
	DB *db.Queries
}

// Stats returns the row count of every table.
func (a *Admin) Stats(ctx context.Context) (Counts, error) {
	row, err := a.DB.CountRows(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return Counts{Sessions: row.Sessions, Children: row.Children, Memberships: row.Memberships}, nil
}

// ResetAll deletes every session, child and membership and restarts the ID sequences.
// This is a destructive operation. It returns the counts removed.
func (a *Admin) ResetAll(ctx context.Context) (Counts, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	before, err := a.Stats(ctx)
	if err != nil {
		return Counts{}, err
	}
	if err := a.DB.ResetAll(ctx); err != nil {
		return Counts{}, fmt.Errorf("reset: %w", err)
	}

	slog.Warn("database reset",
		"sessions", before.Sessions,
		"children", before.Children,
		"memberships", before.Memberships,
	)
	return before, nil
}
