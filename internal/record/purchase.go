package record

import (
	"math"
	"strconv"
	"strings"
)

// RetailSaleName is the item name given to purchases derived from history.
const RetailSaleName = "Retail Sale"

// Purchase is a sale in the POS ledger.
type Purchase struct {
	ID        string  `json:"id"`
	HistoryID string  `json:"history_id"`
	ItemName  string  `json:"item_name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
	CreatedAt int64   `json:"created_at"` // Unix milliseconds
}

// PurchaseFromRecord derives a single-unit retail sale from a committed record.
// A result that is not a finite number becomes a zero-value sale.
func PurchaseFromRecord(id string, r Record) Purchase {
	amount, err := strconv.ParseFloat(strings.TrimSpace(r.ResultText), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return Purchase{
		ID:        id,
		HistoryID: r.ID,
		ItemName:  RetailSaleName,
		Quantity:  1,
		Price:     amount,
		Total:     amount,
		CreatedAt: r.CreatedAt,
	}
}
