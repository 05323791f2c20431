package sheets

import (
	"context"

	"vendas/internal/report"
)

// Ports for outbound summary export adapters.
type (
	// SummaryExporter pushes a run's KPI block to an external destination
	// (a spreadsheet the finance team reads). Export failures are
	// reported but never abort a run: the persisted summary is already
	// the source of truth.
	SummaryExporter interface {
		ExportKPIs(ctx context.Context, kpis report.KPIs, windowStart, windowEnd string) error
	}
)
