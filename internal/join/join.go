// Package join builds the denormalized transaction fact table and the
// per-order payment aggregates from the loaded relations.
//
// Payments are deliberately kept out of the fact rows: revenue, category and
// geographic analysis run at item level (price + freight) while payment-type
// and installment analysis runs at order level, so split payments never fan
// out across an order's items.
package join

import (
	"fmt"
	"sort"

	"vendas/internal/core"
	"vendas/internal/loader"
	"vendas/internal/log"
)

// fallbackCategory labels items whose product row or raw category name is
// missing. A raw name that merely lacks a translation passes through as-is.
const fallbackCategory = "other"

// Diagnostics counts rows dropped at each join edge. The counts are
// reported but only fatal when the overall miss rate exceeds the
// configured threshold.
type Diagnostics struct {
	DeliveredOrders       int
	CandidateItems        int // item rows belonging to delivered orders
	FactRows              int
	OrdersWithoutItems    int
	OrphanItems           int // item rows referencing an unknown order
	MissingCustomer       int // fact rows dropped: order's customer unknown
	MissingSeller         int // fact rows dropped: item's seller unknown
	MissingProduct        int // kept, category falls back to "other"
	OrdersWithoutReview   int // kept, review score stays null
	OrdersWithoutPayments int // dropped from the payment aggregate table
}

// misses is the number of dropped rows across required join edges.
func (d *Diagnostics) misses() int {
	return d.MissingCustomer + d.MissingSeller + d.OrdersWithoutPayments
}

// base is the number of rows that could have been produced.
func (d *Diagnostics) base() int {
	return d.CandidateItems + d.DeliveredOrders
}

// MissRate is the fraction of required-side join misses.
func (d *Diagnostics) MissRate() float64 {
	if d.base() == 0 {
		return 0
	}
	return float64(d.misses()) / float64(d.base())
}

type Engine struct {
	deliveredStatus string
	maxMissRate     float64
	logger          *log.Logger
}

func New(deliveredStatus string, maxMissRate float64, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.Config{Component: "join"})
	}
	return &Engine{deliveredStatus: deliveredStatus, maxMissRate: maxMissRate, logger: logger}
}

// Build filters orders to the delivered status, resolves all joins and
// returns the fact table plus the order-payment aggregates. Fact rows come
// out in order-file order, items sorted by sequence, so identical input
// yields an identical table.
func (e *Engine) Build(ds *loader.Dataset) ([]core.TransactionFact, []core.OrderPayment, *Diagnostics, error) {
	diag := &Diagnostics{}

	customers := make(map[string]core.Customer, len(ds.Customers))
	for _, c := range ds.Customers {
		customers[c.ID] = c
	}
	sellers := make(map[string]core.Seller, len(ds.Sellers))
	for _, s := range ds.Sellers {
		sellers[s.ID] = s
	}
	products := make(map[string]core.Product, len(ds.Products))
	for _, p := range ds.Products {
		products[p.ID] = p
	}

	reviews := bestReviewPerOrder(ds.Reviews)

	orderIDs := make(map[string]struct{}, len(ds.Orders))
	for _, o := range ds.Orders {
		orderIDs[o.ID] = struct{}{}
	}

	itemsByOrder := make(map[string][]core.OrderItem)
	for _, it := range ds.Items {
		if _, ok := orderIDs[it.OrderID]; !ok {
			diag.OrphanItems++
			continue
		}
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
	}
	paymentsByOrder := make(map[string][]core.Payment)
	for _, p := range ds.Payments {
		paymentsByOrder[p.OrderID] = append(paymentsByOrder[p.OrderID], p)
	}

	var facts []core.TransactionFact
	var orderPayments []core.OrderPayment

	for _, o := range ds.Orders {
		if o.Status != e.deliveredStatus {
			continue
		}
		diag.DeliveredOrders++
		month := core.MonthOf(o.PurchasedAt)

		items := itemsByOrder[o.ID]
		if len(items) == 0 {
			diag.OrdersWithoutItems++
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Sequence < items[j].Sequence })

		customer, hasCustomer := customers[o.CustomerID]
		review, hasReview := reviews[o.ID]
		if !hasReview {
			diag.OrdersWithoutReview++
		}

		for _, it := range items {
			diag.CandidateItems++
			if !hasCustomer {
				diag.MissingCustomer++
				continue
			}
			seller, ok := sellers[it.SellerID]
			if !ok {
				diag.MissingSeller++
				continue
			}

			category := fallbackCategory
			if p, ok := products[it.ProductID]; ok {
				category = translateCategory(p.Category, ds.Translations)
			} else {
				diag.MissingProduct++
			}

			fact := core.TransactionFact{
				OrderID:       o.ID,
				PurchasedAt:   o.PurchasedAt,
				PurchaseMonth: month,
				DeliveredAt:   o.DeliveredAt,
				EstimatedAt:   o.EstimatedDeliveryAt,
				Price:         it.Price,
				Freight:       it.Freight,
				Category:      category,
				CustomerID:    o.CustomerID,
				CustomerState: customer.State,
				CustomerCity:  customer.City,
				SellerID:      it.SellerID,
				SellerState:   seller.State,
			}
			if hasReview {
				fact.ReviewScore = review.Score
			}
			facts = append(facts, fact)
			diag.FactRows++
		}

		if agg, ok := aggregatePayments(o.ID, month, paymentsByOrder[o.ID]); ok {
			orderPayments = append(orderPayments, agg)
		} else {
			diag.OrdersWithoutPayments++
		}
	}

	e.logger.Info("Join complete",
		"delivered_orders", diag.DeliveredOrders,
		"fact_rows", diag.FactRows,
		"orders_without_items", diag.OrdersWithoutItems,
		"orphan_items", diag.OrphanItems,
		"missing_customer", diag.MissingCustomer,
		"missing_seller", diag.MissingSeller,
		"missing_product", diag.MissingProduct,
		"orders_without_payments", diag.OrdersWithoutPayments)

	if rate := diag.MissRate(); rate > e.maxMissRate {
		return nil, nil, diag, fmt.Errorf("%w: join-miss rate %.4f exceeds threshold %.4f (%d misses over %d rows)",
			core.ErrExcessiveDataLoss, rate, e.maxMissRate, diag.misses(), diag.base())
	}

	return facts, orderPayments, diag, nil
}

// translateCategory resolves a raw category name through the translation
// table. Untranslated names pass through unchanged; an empty raw name gets
// the fallback label.
func translateCategory(raw string, translations map[string]string) string {
	if raw == "" {
		return fallbackCategory
	}
	if english, ok := translations[raw]; ok {
		return english
	}
	return raw
}

// bestReviewPerOrder keeps one review per order: the most recent creation
// date wins, ties broken by the greater review id.
func bestReviewPerOrder(reviews []core.Review) map[string]core.Review {
	best := make(map[string]core.Review)
	for _, r := range reviews {
		cur, ok := best[r.OrderID]
		if !ok {
			best[r.OrderID] = r
			continue
		}
		switch {
		case r.CreatedAt.After(cur.CreatedAt):
			best[r.OrderID] = r
		case r.CreatedAt.Equal(cur.CreatedAt) && r.ID > cur.ID:
			best[r.OrderID] = r
		}
	}
	return best
}

// aggregatePayments folds an order's payment rows into one aggregate. The
// dominant type is the type of the single largest payment row; equal values
// resolve to the lower payment sequence for determinism.
func aggregatePayments(orderID string, month core.Month, payments []core.Payment) (core.OrderPayment, bool) {
	if len(payments) == 0 {
		return core.OrderPayment{}, false
	}
	agg := core.OrderPayment{OrderID: orderID, PurchaseMonth: month}
	dominant := payments[0]
	for _, p := range payments {
		agg.Total = agg.Total.Add(p.Value)
		if p.Installments > agg.MaxInstallments {
			agg.MaxInstallments = p.Installments
		}
		if p.Value.Centavos > dominant.Value.Centavos ||
			(p.Value.Centavos == dominant.Value.Centavos && p.Sequence < dominant.Sequence) {
			dominant = p
		}
	}
	agg.DominantType = dominant.Type
	return agg, true
}
