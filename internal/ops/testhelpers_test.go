package ops

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/hpungsan/tally/internal/db"
	"github.com/hpungsan/tally/internal/record"
)

// setupDB opens a fresh database and returns it with its base directory.
func setupDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	baseDir := t.TempDir()
	database, err := db.Init(baseDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, baseDir
}

// committed builds a record committed at the given time.
func committed(i int, result string, at time.Time) record.Record {
	return record.Record{
		ID:             record.NewID(at),
		ExpressionText: fmt.Sprintf("%d+%s", i, result),
		ResultText:     result,
		CreatedAt:      at.UnixMilli(),
	}
}
