package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kwondev/buyee-mercari-scraper/internal/models"
)

// Run records one scrape run's outcome per keyword.
type Run struct {
	ID           string
	Keyword      string
	ListingCount int
	RowsAccepted int
	SoftFailed   bool
	StartedAt    time.Time
	FinishedAt   time.Time
}

// InsertRun records a per-keyword run outcome.
func (db *DB) InsertRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs (id, keyword, listing_count, rows_accepted, soft_failed, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := db.pool.Exec(ctx, query,
		run.ID, run.Keyword, run.ListingCount, run.RowsAccepted, run.SoftFailed, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// InsertRows mirrors accepted output rows. Re-inserting a known item
// URL is a no-op so the mirror tolerates replays.
func (db *DB) InsertRows(ctx context.Context, runID string, rows []models.OutputRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO listings (run_id, code, title, price_text, image_ref, item_url, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_url) DO NOTHING`

	return db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, row := range rows {
			if row.ItemURL == "" {
				// Sentinel rows belong to the sheet only.
				continue
			}
			if _, err := tx.Exec(ctx, query,
				runID, row.Code, row.Title, row.PriceText, row.ImageCell, row.ItemURL, row.Timestamp,
			); err != nil {
				return fmt.Errorf("failed to insert listing row: %w", err)
			}
		}
		return nil
	})
}
