package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hpungsan/tally/internal/calc"
	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/db"
	"github.com/hpungsan/tally/internal/record"
)

// ListPurchasesInput contains parameters for the ListPurchases operation.
type ListPurchasesInput struct {
	Limit int // default: 20, capped at the ledger size
}

// ListPurchasesOutput contains the result of the ListPurchases operation.
type ListPurchasesOutput struct {
	Items []record.Purchase `json:"items"`
	Sort  string            `json:"sort"`
}

// ListPurchases returns ledger entries, newest first.
func ListPurchases(ctx context.Context, database *sql.DB, cfg *config.Config, input ListPurchasesInput) (*ListPurchasesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, purchaseLimit(cfg))

	items, err := db.ListPurchases(ctx, database, limit)
	if err != nil {
		return nil, err
	}
	return &ListPurchasesOutput{Items: items, Sort: "created_at_desc"}, nil
}

// StatsOutput summarises the purchases ledger.
type StatsOutput struct {
	TotalRevenue       float64 `json:"total_revenue"`
	MonthlyRevenue     float64 `json:"monthly_revenue"`
	DailyRevenue       float64 `json:"daily_revenue"`
	InvoicesToday      int     `json:"invoices_today"`
	PurchaseCount      int     `json:"purchase_count"`
	AveragePerCustomer float64 `json:"average_per_customer"`
	ComputedAt         int64   `json:"computed_at"`
}

// Stats computes revenue totals relative to now. Day and month boundaries
// are taken in now's location.
func Stats(ctx context.Context, database *sql.DB, now time.Time) (*StatsOutput, error) {
	total, count, err := db.SumPurchasesSince(ctx, database, 0)
	if err != nil {
		return nil, err
	}
	monthly, _, err := db.SumPurchasesSince(ctx, database, startOfMonth(now).UnixMilli())
	if err != nil {
		return nil, err
	}
	daily, today, err := db.SumPurchasesSince(ctx, database, startOfDay(now).UnixMilli())
	if err != nil {
		return nil, err
	}

	out := &StatsOutput{
		TotalRevenue:   total,
		MonthlyRevenue: monthly,
		DailyRevenue:   daily,
		InvoicesToday:  today,
		PurchaseCount:  count,
		ComputedAt:     now.UnixMilli(),
	}
	if count > 0 {
		out.AveragePerCustomer = total / float64(count)
	}
	return out, nil
}

// ReportOutput is a rendered sales report.
type ReportOutput struct {
	Markdown  string            `json:"markdown"`
	Stats     StatsOutput       `json:"stats"`
	Purchases []record.Purchase `json:"purchases"`
	Currency  calc.Currency     `json:"currency"`
}

// Report builds a markdown sales report with amounts in the configured currency.
func Report(ctx context.Context, database *sql.DB, cfg *config.Config, settings Settings, now time.Time) (*ReportOutput, error) {
	stats, err := Stats(ctx, database, now)
	if err != nil {
		return nil, err
	}
	purchases, err := db.ListPurchases(ctx, database, purchaseLimit(cfg))
	if err != nil {
		return nil, err
	}

	cur := settings.Currency
	if _, ok := calc.ParseCurrency(string(cur)); !ok {
		cur = calc.DefaultCurrency
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Sales Report\n\n")
	fmt.Fprintf(&b, "Generated %s.\n\n", now.Format("2 Jan 2006 15:04"))

	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total revenue | %s |\n", calc.FormatAmount(stats.TotalRevenue, cur))
	fmt.Fprintf(&b, "| This month | %s |\n", calc.FormatAmount(stats.MonthlyRevenue, cur))
	fmt.Fprintf(&b, "| Today | %s |\n", calc.FormatAmount(stats.DailyRevenue, cur))
	fmt.Fprintf(&b, "| Invoices today | %s |\n", humanize.Comma(int64(stats.InvoicesToday)))
	fmt.Fprintf(&b, "| Average per customer | %s |\n", calc.FormatAmount(stats.AveragePerCustomer, cur))

	b.WriteString("\n## Recent purchases\n\n")
	if len(purchases) == 0 {
		b.WriteString("No purchases yet.\n")
	} else {
		b.WriteString("| When | Item | Qty | Price | Total |\n|---|---|---:|---:|---:|\n")
		for _, p := range purchases {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
				humanize.RelTime(time.UnixMilli(p.CreatedAt), now, "ago", "from now"),
				p.ItemName,
				p.Quantity,
				calc.FormatAmount(p.Price, cur),
				calc.FormatAmount(p.Total, cur),
			)
		}
	}

	return &ReportOutput{
		Markdown:  b.String(),
		Stats:     *stats,
		Purchases: purchases,
		Currency:  cur,
	}, nil
}
