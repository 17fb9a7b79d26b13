package ops

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/record"
)

func TestAppendHistory_RecordsPurchase(t *testing.T) {
	ctx := context.Background()
	database, _ := setupDB(t)
	cfg := config.DefaultConfig()

	rec := committed(1, "17.00", time.Now())
	out, err := AppendHistory(ctx, database, cfg, rec)
	if err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	if out.Purchase == nil {
		t.Fatal("Purchase = nil, want a retail sale")
	}
	if out.Purchase.HistoryID != rec.ID || out.Purchase.Total != 17 || out.Purchase.ItemName != record.RetailSaleName {
		t.Errorf("Purchase = %+v", out.Purchase)
	}

	got, err := FetchHistory(ctx, database, rec.ID)
	if err != nil {
		t.Fatalf("FetchHistory failed: %v", err)
	}
	if *got != rec {
		t.Errorf("FetchHistory = %+v, want %+v", *got, rec)
	}
}

func TestAppendHistory_DuplicateRollsBack(t *testing.T) {
	ctx := context.Background()
	database, _ := setupDB(t)
	cfg := config.DefaultConfig()

	rec := committed(1, "5.00", time.Now())
	if _, err := AppendHistory(ctx, database, cfg, rec); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	if _, err := AppendHistory(ctx, database, cfg, rec); err == nil {
		t.Fatal("second AppendHistory with same id succeeded")
	}

	purchases, err := ListPurchases(ctx, database, cfg, ListPurchasesInput{})
	if err != nil {
		t.Fatalf("ListPurchases failed: %v", err)
	}
	if len(purchases.Items) != 1 {
		t.Errorf("purchases = %d, want 1", len(purchases.Items))
	}
}

func TestAppendHistory_RequiresID(t *testing.T) {
	database, _ := setupDB(t)
	_, err := AppendHistory(context.Background(), database, nil, record.Record{ResultText: "1.00"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestAppendHistory_CapsLogNewestFirst(t *testing.T) {
	ctx := context.Background()
	database, _ := setupDB(t)
	cfg := config.DefaultConfig()

	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
	var ids []string
	for i := 0; i < 55; i++ {
		rec := committed(i, fmt.Sprintf("%d.00", i), base.Add(time.Duration(i)*time.Second))
		if _, err := AppendHistory(ctx, database, cfg, rec); err != nil {
			t.Fatalf("AppendHistory(%d) failed: %v", i, err)
		}
		ids = append(ids, rec.ID)
	}

	out, err := ListHistory(ctx, database, ListHistoryInput{Limit: 100})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if out.Pagination.Total != 50 {
		t.Fatalf("Total = %d, want 50", out.Pagination.Total)
	}
	if out.Items[0].ID != ids[54] {
		t.Errorf("newest = %s, want %s", out.Items[0].ID, ids[54])
	}
	if out.Items[len(out.Items)-1].ID != ids[5] {
		t.Errorf("oldest kept = %s, want %s", out.Items[len(out.Items)-1].ID, ids[5])
	}

	purchases, err := ListPurchases(ctx, database, cfg, ListPurchasesInput{Limit: 1000})
	if err != nil {
		t.Fatalf("ListPurchases failed: %v", err)
	}
	if len(purchases.Items) != 50 {
		t.Errorf("purchases = %d, want 50", len(purchases.Items))
	}
}

func TestAppendHistory_ConfiguredLimit(t *testing.T) {
	ctx := context.Background()
	database, _ := setupDB(t)
	cfg := config.DefaultConfig()
	cfg.HistoryLimit = 3

	now := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := AppendHistory(ctx, database, cfg, committed(i, "1.00", now.Add(time.Duration(i)*time.Millisecond))); err != nil {
			t.Fatalf("AppendHistory(%d) failed: %v", i, err)
		}
	}

	out, err := ListHistory(ctx, database, ListHistoryInput{})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(out.Items) != 3 {
		t.Errorf("items = %d, want 3", len(out.Items))
	}
}

func TestListHistory_Pagination(t *testing.T) {
	ctx := context.Background()
	database, _ := setupDB(t)
	cfg := config.DefaultConfig()

	now := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := AppendHistory(ctx, database, cfg, committed(i, "2.00", now.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("AppendHistory(%d) failed: %v", i, err)
		}
	}

	out, err := ListHistory(ctx, database, ListHistoryInput{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	want := Pagination{Limit: 2, Offset: 2, HasMore: true, Total: 5}
	if out.Pagination != want {
		t.Errorf("Pagination = %+v, want %+v", out.Pagination, want)
	}
	if out.Sort != "created_at_desc" {
		t.Errorf("Sort = %q", out.Sort)
	}

	out, err = ListHistory(ctx, database, ListHistoryInput{Limit: 500, Offset: -3})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if out.Pagination.Limit != MaxListLimit || out.Pagination.Offset != 0 || out.Pagination.HasMore {
		t.Errorf("clamped Pagination = %+v", out.Pagination)
	}
}

func TestFetchHistory_Errors(t *testing.T) {
	ctx := context.Background()
	database, _ := setupDB(t)

	if _, err := FetchHistory(ctx, database, "  "); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank id error = %v, want INVALID_REQUEST", err)
	}
	if _, err := FetchHistory(ctx, database, "01MISSING"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing id error = %v, want NOT_FOUND", err)
	}
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	database, _ := setupDB(t)
	cfg := config.DefaultConfig()

	out, err := ClearHistory(ctx, database)
	if err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if out.Cleared != 0 || out.Message != "History already empty" {
		t.Errorf("empty clear = %+v", out)
	}

	now := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := AppendHistory(ctx, database, cfg, committed(i, "3.00", now.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("AppendHistory(%d) failed: %v", i, err)
		}
	}

	out, err = ClearHistory(ctx, database)
	if err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if out.Cleared != 3 || out.Message != "Cleared 3 calculations" {
		t.Errorf("clear = %+v", out)
	}

	// the ledger survives
	purchases, err := ListPurchases(ctx, database, cfg, ListPurchasesInput{})
	if err != nil {
		t.Fatalf("ListPurchases failed: %v", err)
	}
	if len(purchases.Items) != 3 {
		t.Errorf("purchases after clear = %d, want 3", len(purchases.Items))
	}
}

func TestFormatClearMessage(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "History already empty"},
		{1, "Cleared 1 calculation"},
		{2, "Cleared 2 calculations"},
		{1200, "Cleared 1,200 calculations"},
	}
	for _, tt := range tests {
		if got := formatClearMessage(tt.n); got != tt.want {
			t.Errorf("formatClearMessage(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
