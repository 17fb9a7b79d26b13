package ops

import (
	"time"

	"github.com/hpungsan/tally/internal/config"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// clampLimit applies the list default and bounds.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}

func historyLimit(cfg *config.Config) int {
	if cfg == nil || cfg.HistoryLimit <= 0 {
		return config.DefaultConfig().HistoryLimit
	}
	return cfg.HistoryLimit
}

func purchaseLimit(cfg *config.Config) int {
	if cfg == nil || cfg.PurchaseLimit <= 0 {
		return config.DefaultConfig().PurchaseLimit
	}
	return cfg.PurchaseLimit
}

// startOfDay returns local midnight of t's day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfMonth returns local midnight on the first of t's month.
func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
