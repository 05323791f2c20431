package core

import "time"

// TransactionFact is one denormalized row per item of a delivered order:
// the sole input to the aggregation reducers. Immutable once built.
//
// Revenue, category and geographic analysis run at this item level
// (price + freight); payment analysis never touches fact rows, see
// OrderPayment.
type TransactionFact struct {
	OrderID       string
	PurchasedAt   time.Time
	PurchaseMonth Month
	DeliveredAt   time.Time // zero when not yet delivered at snapshot time
	EstimatedAt   time.Time

	Price   Money
	Freight Money

	Category      string // translated display name, raw name when untranslated
	CustomerID    string
	CustomerState string
	CustomerCity  string
	SellerID      string
	SellerState   string

	ReviewScore int // 1-5, 0 when the order has no review
}

// Revenue is the item-level contribution to GMV: price plus freight.
func (f TransactionFact) Revenue() Money {
	return f.Price.Add(f.Freight)
}

// HasReview reports whether a review was joined onto this row.
func (f TransactionFact) HasReview() bool {
	return f.ReviewScore >= 1 && f.ReviewScore <= 5
}

// OrderPayment is the per-order payment aggregate: one row per delivered
// order with at least one payment. Payment-method and installment analysis
// runs here, at the order level, so split payments never fan out across
// item rows.
type OrderPayment struct {
	OrderID         string
	PurchaseMonth   Month
	Total           Money  // sum of all payment rows on the order
	DominantType    string // type of the single largest payment row
	MaxInstallments int
}
