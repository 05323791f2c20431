package report

import (
	"sort"

	"vendas/internal/core"
)

// geographicDistribution groups item-level revenue by customer state with
// each state's percentage share of the total, descending by revenue.
func geographicDistribution(facts []core.TransactionFact) []StateShare {
	type stateAcc struct {
		revenue   int64
		orders    map[string]struct{}
		customers map[string]struct{}
	}
	states := make(map[string]*stateAcc)
	var total int64

	for _, f := range facts {
		s := states[f.CustomerState]
		if s == nil {
			s = &stateAcc{orders: make(map[string]struct{}), customers: make(map[string]struct{})}
			states[f.CustomerState] = s
		}
		s.revenue += f.Revenue().Centavos
		s.orders[f.OrderID] = struct{}{}
		s.customers[f.CustomerID] = struct{}{}
		total += f.Revenue().Centavos
	}

	shares := make([]StateShare, 0, len(states))
	for name, s := range states {
		share := StateShare{
			State:     name,
			Revenue:   core.Money{Centavos: s.revenue},
			Orders:    len(s.orders),
			Customers: len(s.customers),
		}
		if total > 0 {
			share.PctOfTotal = Percent(float64(s.revenue) * 100 / float64(total))
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Revenue.Centavos != shares[j].Revenue.Centavos {
			return shares[i].Revenue.Centavos > shares[j].Revenue.Centavos
		}
		return shares[i].State < shares[j].State
	})

	return shares
}
