package pipeline

import (
	"fmt"

	"vendas/internal/core"
)

// SelectWindow restricts facts and payment aggregates to the inclusive
// [start, end] month range on the order purchase month. Pure filter;
// retained rows are untouched. An inverted range is fatal.
func SelectWindow(facts []core.TransactionFact, payments []core.OrderPayment, start, end core.Month) ([]core.TransactionFact, []core.OrderPayment, error) {
	if start.After(end) {
		return nil, nil, fmt.Errorf("%w: start %s is after end %s", core.ErrInvalidWindow, start, end)
	}

	kept := make([]core.TransactionFact, 0, len(facts))
	for _, f := range facts {
		if f.PurchaseMonth.In(start, end) {
			kept = append(kept, f)
		}
	}

	keptPayments := make([]core.OrderPayment, 0, len(payments))
	for _, p := range payments {
		if p.PurchaseMonth.In(start, end) {
			keptPayments = append(keptPayments, p)
		}
	}

	return kept, keptPayments, nil
}
