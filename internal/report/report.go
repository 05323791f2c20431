package report

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"vendas/internal/core"
)

// Options control the shape of the summary.
type Options struct {
	WindowStart     core.Month
	WindowEnd       core.Month
	TopCategories   int
	TrendCategories int
}

// Build runs the five reducers plus the KPI pass concurrently over the
// read-only fact table and payment aggregates. Each goroutine writes a
// disjoint set of Summary fields, so no synchronization beyond the group
// wait is needed.
func Build(ctx context.Context, facts []core.TransactionFact, payments []core.OrderPayment, opts Options) (*Summary, error) {
	s := &Summary{
		Metadata: Metadata{
			WindowStart: opts.WindowStart.String(),
			WindowEnd:   opts.WindowEnd.String(),
			FactRows:    len(facts),
		},
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.MonthlyRevenue, s.Quarterly = revenueDynamics(facts)
		return nil
	})
	g.Go(func() error {
		s.PaymentTypes, s.Installments = paymentIntelligence(payments)
		return nil
	})
	g.Go(func() error {
		s.TopCategories, s.CategoryMonthly = categoryPerformance(facts, opts.TopCategories, opts.TrendCategories)
		return nil
	})
	g.Go(func() error {
		s.States = geographicDistribution(facts)
		return nil
	})
	g.Go(func() error {
		s.DeliveryMonthly, s.ReviewDistribution = operationalFinance(facts)
		return nil
	})
	g.Go(func() error {
		s.KPIs = computeKPIs(facts, payments)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// Marshal serializes a summary deterministically: fixed struct key order,
// fixed decimal precision, two-space indenting, trailing newline.
func Marshal(s *Summary) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
