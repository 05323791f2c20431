// Package report computes the five analytical pillars over the transaction
// fact table and assembles them into the dashboard summary document.
//
// Every reducer is a pure function of the read-only (facts, order payments)
// pair; Build runs them concurrently. Percentages and averages stay as exact
// centavo ratios internally and are rounded once, at JSON marshal time.
package report

import (
	"strconv"

	"vendas/internal/core"
)

// Percent is a percentage serialized with one decimal place.
type Percent float64

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(p), 'f', 1, 64)), nil
}

// Days is a duration in days serialized with one decimal place.
type Days float64

func (d Days) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(d), 'f', 1, 64)), nil
}

// Score is a review-score average serialized with two decimal places.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(s), 'f', 2, 64)), nil
}

// Summary is the complete dashboard payload: the external JSON contract
// consumed by the presentation layer. Field order fixes the key order, and
// every numeric field marshals with fixed precision, so identical input
// serializes byte-identically. The payload carries no wall-clock fields;
// run timestamps live in the run store and refresh notifications.
type Summary struct {
	KPIs               KPIs                `json:"kpis"`
	MonthlyRevenue     []MonthRevenue      `json:"monthly_revenue"`
	Quarterly          []QuarterRevenue    `json:"quarterly"`
	PaymentTypes       []PaymentTypeShare  `json:"payment_types"`
	Installments       []InstallmentBucket `json:"installments"`
	TopCategories      []CategoryRank      `json:"top_categories"`
	CategoryMonthly    []CategoryMonth     `json:"category_monthly"`
	States             []StateShare        `json:"states"`
	DeliveryMonthly    []DeliveryMonth     `json:"delivery_monthly"`
	ReviewDistribution []ReviewBucket      `json:"review_distribution"`
	Metadata           Metadata            `json:"metadata"`
}

// KPIs are the top-level scalars.
type KPIs struct {
	TotalRevenue    core.Money `json:"total_revenue"` // GMV: sum of price+freight over fact rows
	TotalOrders     int        `json:"total_orders"`
	AvgOrderValue   core.Money `json:"avg_order_value"`
	TotalCustomers  int        `json:"total_customers"`
	TotalSellers    int        `json:"total_sellers"`
	AvgReviewScore  Score      `json:"avg_review_score"`
	FiveStarPct     Percent    `json:"five_star_pct"`
	OnTimePct       Percent    `json:"on_time_pct"`
	AvgDeliveryDays Days       `json:"avg_delivery_days"`
	CreditCardPct   Percent    `json:"credit_card_pct"`
}

// MonthRevenue is one row of the monthly revenue series, chronological.
type MonthRevenue struct {
	Month   string     `json:"month"` // "YYYY-MM"
	Revenue core.Money `json:"revenue"`
	Freight core.Money `json:"freight"`
	Total   core.Money `json:"total"`
	Orders  int        `json:"orders"`
}

// QuarterRevenue is one row of the quarterly series. GrowthPct is omitted
// for the first quarter and for any quarter whose predecessor had zero
// revenue, never NaN or infinite.
type QuarterRevenue struct {
	Quarter   string     `json:"quarter"` // "YYYYQn"
	Revenue   core.Money `json:"revenue"`
	Orders    int        `json:"orders"`
	GrowthPct *Percent   `json:"growth_pct,omitempty"`
}

// PaymentTypeShare is order-level: one order counts once under its dominant
// payment type.
type PaymentTypeShare struct {
	Type       string     `json:"payment_type"`
	Orders     int        `json:"orders"`
	TotalValue core.Money `json:"total_value"`
	PctOfTotal Percent    `json:"pct_of_total"`
}

// InstallmentBucket groups credit-card orders by their maximum installment
// count.
type InstallmentBucket struct {
	Installments int        `json:"installments"`
	Orders       int        `json:"orders"`
	TotalValue   core.Money `json:"total_value"`
}

// CategoryRank is one row of the top-N category ranking.
type CategoryRank struct {
	Category string     `json:"category"`
	Revenue  core.Money `json:"revenue"`
	Orders   int        `json:"orders"`
	AvgPrice core.Money `json:"avg_price"`
}

// CategoryMonth is one point of a top-category monthly revenue series.
type CategoryMonth struct {
	Month    string     `json:"month"`
	Category string     `json:"category"`
	Revenue  core.Money `json:"revenue"`
}

// StateShare is one row of the customer-state revenue distribution.
type StateShare struct {
	State      string     `json:"state"`
	Revenue    core.Money `json:"revenue"`
	Orders     int        `json:"orders"`
	Customers  int        `json:"customers"`
	PctOfTotal Percent    `json:"pct_of_total"`
}

// DeliveryMonth carries the monthly operational metrics. Only orders with
// both delivered and estimated timestamps contribute.
type DeliveryMonth struct {
	Month     string  `json:"month"`
	AvgDays   Days    `json:"avg_days"`
	OnTimePct Percent `json:"on_time_pct"`
}

// ReviewBucket is one bar of the review-score histogram over distinct
// reviewed orders.
type ReviewBucket struct {
	Score  int     `json:"score"`
	Orders int     `json:"orders"`
	Pct    Percent `json:"pct"`
}

// Metadata describes the analyzed window.
type Metadata struct {
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	FactRows    int    `json:"fact_rows"`
}
