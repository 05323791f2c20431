package report

import (
	"vendas/internal/core"
)

// computeKPIs derives the top-level scalars. Revenue KPIs are item-level
// (price + freight over fact rows); the credit-card share is order-level
// over the payment aggregates, consistent with the payment breakdown.
func computeKPIs(facts []core.TransactionFact, payments []core.OrderPayment) KPIs {
	var revenue int64
	orders := make(map[string]struct{})
	customers := make(map[string]struct{})
	sellers := make(map[string]struct{})

	var scoreSum, reviewed, fiveStar int
	var deliveryDaysSum int64
	var deliveryCount, onTime int
	seenOrder := make(map[string]struct{})

	for _, f := range facts {
		revenue += f.Revenue().Centavos
		orders[f.OrderID] = struct{}{}
		customers[f.CustomerID] = struct{}{}
		sellers[f.SellerID] = struct{}{}

		if _, ok := seenOrder[f.OrderID]; ok {
			continue
		}
		seenOrder[f.OrderID] = struct{}{}
		if f.HasReview() {
			scoreSum += f.ReviewScore
			reviewed++
			if f.ReviewScore == 5 {
				fiveStar++
			}
		}
		if !f.DeliveredAt.IsZero() && !f.EstimatedAt.IsZero() {
			deliveryDaysSum += deliveryDays(f)
			deliveryCount++
			if !f.DeliveredAt.After(f.EstimatedAt) {
				onTime++
			}
		}
	}

	var creditCardTotal, paymentTotal int64
	for _, p := range payments {
		paymentTotal += p.Total.Centavos
		if p.DominantType == core.PaymentCreditCard {
			creditCardTotal += p.Total.Centavos
		}
	}

	k := KPIs{
		TotalRevenue:   core.Money{Centavos: revenue},
		TotalOrders:    len(orders),
		TotalCustomers: len(customers),
		TotalSellers:   len(sellers),
	}
	if len(orders) > 0 {
		k.AvgOrderValue = core.Money{Centavos: revenue / int64(len(orders))}
	}
	if reviewed > 0 {
		k.AvgReviewScore = Score(float64(scoreSum) / float64(reviewed))
		k.FiveStarPct = Percent(float64(fiveStar) * 100 / float64(reviewed))
	}
	if deliveryCount > 0 {
		k.AvgDeliveryDays = Days(float64(deliveryDaysSum) / float64(deliveryCount))
		k.OnTimePct = Percent(float64(onTime) * 100 / float64(deliveryCount))
	}
	if paymentTotal > 0 {
		k.CreditCardPct = Percent(float64(creditCardTotal) * 100 / float64(paymentTotal))
	}
	return k
}
