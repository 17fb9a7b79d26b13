package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/db"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/record"
)

// AppendHistoryOutput contains the result of the AppendHistory operation.
type AppendHistoryOutput struct {
	Record          record.Record    `json:"record"`
	Purchase        *record.Purchase `json:"purchase,omitempty"`
	TrimmedHistory  int64            `json:"trimmed_history"`
	TrimmedPurchase int64            `json:"trimmed_purchases"`
}

// AppendHistory stores a committed record at the head of the log and trims
// the log to the configured limit. The record also becomes a retail sale in
// the purchases ledger, once per record.
func AppendHistory(ctx context.Context, database *sql.DB, cfg *config.Config, rec record.Record) (*AppendHistoryOutput, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return nil, errors.NewInvalidRequest("record id is required")
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	if err := db.InsertHistory(ctx, tx, rec); err != nil {
		return nil, err
	}
	trimmed, err := db.TrimHistory(ctx, tx, historyLimit(cfg))
	if err != nil {
		return nil, err
	}

	out := &AppendHistoryOutput{Record: rec, TrimmedHistory: trimmed}

	p := record.PurchaseFromRecord(record.NewID(rec.Time()), rec)
	inserted, err := db.InsertPurchase(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	if inserted {
		out.Purchase = &p
		if out.TrimmedPurchase, err = db.TrimPurchases(ctx, tx, purchaseLimit(cfg)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// ListHistoryInput contains parameters for the ListHistory operation.
type ListHistoryInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListHistoryOutput contains the result of the ListHistory operation.
type ListHistoryOutput struct {
	Items      []record.Record `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// ListHistory returns committed records, newest first.
func ListHistory(ctx context.Context, database *sql.DB, input ListHistoryInput) (*ListHistoryOutput, error) {
	limit := clampLimit(input.Limit)
	offset := max(input.Offset, 0)

	items, err := db.ListHistory(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := db.CountHistory(ctx, database)
	if err != nil {
		return nil, err
	}

	return &ListHistoryOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}

// FetchHistory returns one record by ID.
func FetchHistory(ctx context.Context, database *sql.DB, id string) (*record.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	return db.GetHistory(ctx, database, id)
}

// ClearHistoryOutput contains the result of the ClearHistory operation.
type ClearHistoryOutput struct {
	Cleared int64  `json:"cleared"`
	Message string `json:"message"`
}

// ClearHistory removes every committed record. The purchases ledger is kept.
func ClearHistory(ctx context.Context, database *sql.DB) (*ClearHistoryOutput, error) {
	n, err := db.ClearHistory(ctx, database)
	if err != nil {
		return nil, err
	}
	return &ClearHistoryOutput{Cleared: n, Message: formatClearMessage(n)}, nil
}

func formatClearMessage(n int64) string {
	switch n {
	case 0:
		return "History already empty"
	case 1:
		return "Cleared 1 calculation"
	}
	return "Cleared " + humanize.Comma(n) + " calculations"
}
