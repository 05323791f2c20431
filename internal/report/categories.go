package report

import (
	"sort"

	"vendas/internal/core"
)

// categoryPerformance ranks translated categories by item-level revenue
// (price + freight), keeps the top topN, and produces a monthly revenue
// series for the top trendN of those.
func categoryPerformance(facts []core.TransactionFact, topN, trendN int) ([]CategoryRank, []CategoryMonth) {
	type catAcc struct {
		revenue  int64
		priceSum int64
		items    int
		orders   map[string]struct{}
	}
	cats := make(map[string]*catAcc)

	for _, f := range facts {
		c := cats[f.Category]
		if c == nil {
			c = &catAcc{orders: make(map[string]struct{})}
			cats[f.Category] = c
		}
		c.revenue += f.Revenue().Centavos
		c.priceSum += f.Price.Centavos
		c.items++
		c.orders[f.OrderID] = struct{}{}
	}

	ranking := make([]CategoryRank, 0, len(cats))
	for name, c := range cats {
		avgPrice := int64(0)
		if c.items > 0 {
			avgPrice = c.priceSum / int64(c.items)
		}
		ranking = append(ranking, CategoryRank{
			Category: name,
			Revenue:  core.Money{Centavos: c.revenue},
			Orders:   len(c.orders),
			AvgPrice: core.Money{Centavos: avgPrice},
		})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Revenue.Centavos != ranking[j].Revenue.Centavos {
			return ranking[i].Revenue.Centavos > ranking[j].Revenue.Centavos
		}
		return ranking[i].Category < ranking[j].Category
	})
	if len(ranking) > topN {
		ranking = ranking[:topN]
	}

	if trendN > len(ranking) {
		trendN = len(ranking)
	}
	trend := make(map[string]struct{}, trendN)
	for _, r := range ranking[:trendN] {
		trend[r.Category] = struct{}{}
	}

	type seriesKey struct {
		month    core.Month
		category string
	}
	series := make(map[seriesKey]int64)
	for _, f := range facts {
		if _, ok := trend[f.Category]; !ok {
			continue
		}
		series[seriesKey{f.PurchaseMonth, f.Category}] += f.Revenue().Centavos
	}

	keys := make([]seriesKey, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := keys[i].month.Compare(keys[j].month); c != 0 {
			return c < 0
		}
		return keys[i].category < keys[j].category
	})

	monthly := make([]CategoryMonth, 0, len(keys))
	for _, k := range keys {
		monthly = append(monthly, CategoryMonth{
			Month:    k.month.String(),
			Category: k.category,
			Revenue:  core.Money{Centavos: series[k]},
		})
	}

	return ranking, monthly
}
