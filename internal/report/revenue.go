package report

import (
	"sort"

	"vendas/internal/core"
)

// revenueDynamics groups item-level revenue by calendar month and quarter.
// Quarter-over-quarter growth is (curr-prev)/prev and omitted when the
// previous quarter had zero revenue.
func revenueDynamics(facts []core.TransactionFact) ([]MonthRevenue, []QuarterRevenue) {
	type monthAcc struct {
		revenue int64
		freight int64
		orders  map[string]struct{}
	}
	type quarterAcc struct {
		revenue int64
		orders  map[string]struct{}
	}

	months := make(map[core.Month]*monthAcc)
	quarters := make(map[core.Quarter]*quarterAcc)

	for _, f := range facts {
		m := months[f.PurchaseMonth]
		if m == nil {
			m = &monthAcc{orders: make(map[string]struct{})}
			months[f.PurchaseMonth] = m
		}
		m.revenue += f.Price.Centavos
		m.freight += f.Freight.Centavos
		m.orders[f.OrderID] = struct{}{}

		qk := f.PurchaseMonth.Quarter()
		q := quarters[qk]
		if q == nil {
			q = &quarterAcc{orders: make(map[string]struct{})}
			quarters[qk] = q
		}
		q.revenue += f.Price.Centavos + f.Freight.Centavos
		q.orders[f.OrderID] = struct{}{}
	}

	monthKeys := make([]core.Month, 0, len(months))
	for k := range months {
		monthKeys = append(monthKeys, k)
	}
	sort.Slice(monthKeys, func(i, j int) bool { return monthKeys[i].Before(monthKeys[j]) })

	monthly := make([]MonthRevenue, 0, len(monthKeys))
	for _, k := range monthKeys {
		m := months[k]
		monthly = append(monthly, MonthRevenue{
			Month:   k.String(),
			Revenue: core.Money{Centavos: m.revenue},
			Freight: core.Money{Centavos: m.freight},
			Total:   core.Money{Centavos: m.revenue + m.freight},
			Orders:  len(m.orders),
		})
	}

	quarterKeys := make([]core.Quarter, 0, len(quarters))
	for k := range quarters {
		quarterKeys = append(quarterKeys, k)
	}
	sort.Slice(quarterKeys, func(i, j int) bool { return quarterKeys[i].Compare(quarterKeys[j]) < 0 })

	quarterly := make([]QuarterRevenue, 0, len(quarterKeys))
	var prevRevenue int64
	for i, k := range quarterKeys {
		q := quarters[k]
		row := QuarterRevenue{
			Quarter: k.String(),
			Revenue: core.Money{Centavos: q.revenue},
			Orders:  len(q.orders),
		}
		if i > 0 && prevRevenue != 0 {
			growth := Percent(float64(q.revenue-prevRevenue) / float64(prevRevenue) * 100)
			row.GrowthPct = &growth
		}
		prevRevenue = q.revenue
		quarterly = append(quarterly, row)
	}

	return monthly, quarterly
}
