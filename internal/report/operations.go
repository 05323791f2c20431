package report

import (
	"sort"

	"vendas/internal/core"
)

// operationalFinance computes the monthly delivery metrics and the
// review-score histogram. Both work over distinct orders so multi-item
// orders are not overweighted; only orders carrying both delivered and
// estimated timestamps contribute to the delivery metrics.
func operationalFinance(facts []core.TransactionFact) ([]DeliveryMonth, []ReviewBucket) {
	type orderInfo struct {
		fact core.TransactionFact
	}
	orders := make(map[string]orderInfo)
	for _, f := range facts {
		if _, seen := orders[f.OrderID]; !seen {
			orders[f.OrderID] = orderInfo{fact: f}
		}
	}

	type deliveryAcc struct {
		days   int64
		onTime int
		count  int
	}
	months := make(map[core.Month]*deliveryAcc)
	scoreCounts := make(map[int]int)
	reviewed := 0

	for _, o := range orders {
		f := o.fact
		if f.HasReview() {
			scoreCounts[f.ReviewScore]++
			reviewed++
		}
		if f.DeliveredAt.IsZero() || f.EstimatedAt.IsZero() {
			continue
		}
		acc := months[f.PurchaseMonth]
		if acc == nil {
			acc = &deliveryAcc{}
			months[f.PurchaseMonth] = acc
		}
		acc.days += deliveryDays(f)
		acc.count++
		if !f.DeliveredAt.After(f.EstimatedAt) {
			acc.onTime++
		}
	}

	monthKeys := make([]core.Month, 0, len(months))
	for k := range months {
		monthKeys = append(monthKeys, k)
	}
	sort.Slice(monthKeys, func(i, j int) bool { return monthKeys[i].Before(monthKeys[j]) })

	delivery := make([]DeliveryMonth, 0, len(monthKeys))
	for _, k := range monthKeys {
		acc := months[k]
		delivery = append(delivery, DeliveryMonth{
			Month:     k.String(),
			AvgDays:   Days(float64(acc.days) / float64(acc.count)),
			OnTimePct: Percent(float64(acc.onTime) * 100 / float64(acc.count)),
		})
	}

	histogram := make([]ReviewBucket, 0, 5)
	for score := 1; score <= 5; score++ {
		n, ok := scoreCounts[score]
		if !ok {
			continue
		}
		bucket := ReviewBucket{Score: score, Orders: n}
		if reviewed > 0 {
			bucket.Pct = Percent(float64(n) * 100 / float64(reviewed))
		}
		histogram = append(histogram, bucket)
	}

	return delivery, histogram
}

// deliveryDays is the whole-day delivery duration, truncated.
func deliveryDays(f core.TransactionFact) int64 {
	return int64(f.DeliveredAt.Sub(f.PurchasedAt).Hours() / 24)
}
