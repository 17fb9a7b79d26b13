package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/record"
)

// ErrDuplicateRecord is returned when a history ID is already stored.
var ErrDuplicateRecord = &errors.TallyError{
	Code:    "DUPLICATE_RECORD",
	Status:  409,
	Message: "history record already exists",
}

const historyColumns = `id, expression_text, result_text, created_at`

const purchaseColumns = `id, history_id, item_name, quantity, price, total, created_at`

// InsertHistory stores a committed record.
func InsertHistory(ctx context.Context, q Querier, r record.Record) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO history (`+historyColumns+`) VALUES (?, ?, ?, ?)`,
		r.ID, r.ExpressionText, r.ResultText, r.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateRecord
		}
		return errors.NewInternal(err)
	}
	return nil
}

// TrimHistory deletes all but the newest keep records and returns how many went.
func TrimHistory(ctx context.Context, q Querier, keep int) (int64, error) {
	return trimNewest(ctx, q, "history", keep)
}

// GetHistory retrieves one record by ID.
func GetHistory(ctx context.Context, q Querier, id string) (*record.Record, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+historyColumns+` FROM history WHERE id = ?`, id)

	var r record.Record
	err := row.Scan(&r.ID, &r.ExpressionText, &r.ResultText, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &r, nil
}

// ListHistory returns records newest first.
func ListHistory(ctx context.Context, q Querier, limit, offset int) ([]record.Record, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM history
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []record.Record{}
	for rows.Next() {
		r, err := ScanRecordFromRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// CountHistory returns the number of stored records.
func CountHistory(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// ClearHistory deletes every record. Purchases are kept.
func ClearHistory(ctx context.Context, q Querier) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// StreamHistory returns rows over every record, oldest first, for export.
// The caller closes rows and scans with ScanRecordFromRows.
func StreamHistory(ctx context.Context, q Querier) (*sql.Rows, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM history ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// ScanRecordFromRows scans the current row into a Record.
func ScanRecordFromRows(rows *sql.Rows) (*record.Record, error) {
	var r record.Record
	if err := rows.Scan(&r.ID, &r.ExpressionText, &r.ResultText, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertPurchase records p unless a purchase for the same history record
// exists. It reports whether a row was written.
func InsertPurchase(ctx context.Context, q Querier, p record.Purchase) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO purchases (`+purchaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.HistoryID, p.ItemName, p.Quantity, p.Price, p.Total, p.CreatedAt,
	)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// TrimPurchases deletes all but the newest keep purchases.
func TrimPurchases(ctx context.Context, q Querier, keep int) (int64, error) {
	return trimNewest(ctx, q, "purchases", keep)
}

// ListPurchases returns purchases newest first.
func ListPurchases(ctx context.Context, q Querier, limit int) ([]record.Purchase, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []record.Purchase{}
	for rows.Next() {
		var p record.Purchase
		if err := rows.Scan(&p.ID, &p.HistoryID, &p.ItemName, &p.Quantity, &p.Price, &p.Total, &p.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// SumPurchasesSince totals purchases created at or after since (Unix ms).
func SumPurchasesSince(ctx context.Context, q Querier, since int64) (float64, int, error) {
	var (
		total float64
		count int
	)
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0), COUNT(*) FROM purchases WHERE created_at >= ?`,
		since,
	).Scan(&total, &count)
	if err != nil {
		return 0, 0, errors.NewInternal(err)
	}
	return total, count, nil
}

// GetSetting returns the JSON stored under key, or ok=false if none is.
func GetSetting(ctx context.Context, q Querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value_json FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}

// PutSetting upserts the JSON stored under key.
func PutSetting(ctx context.Context, q Querier, key, valueJSON string, updatedAt int64) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settings (key, value_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`,
		key, valueJSON, updatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// trimNewest keeps the newest keep rows of table. table is never user input.
func trimNewest(ctx context.Context, q Querier, table string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := q.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id NOT IN (
			SELECT id FROM `+table+` ORDER BY created_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY")
}
