// Package pipeline wires the ETL stages together: load CSVs, filter and
// join, select the time window, aggregate, serialize, persist and notify.
// Data flows strictly forward; every run recomputes from scratch.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vendas/internal/config"
	"vendas/internal/join"
	"vendas/internal/loader"
	"vendas/internal/log"
	"vendas/internal/metrics"
	"vendas/internal/report"
	"vendas/internal/sheets"
	"vendas/internal/storage"
)

// RunStore persists completed runs. Implemented by storage.SQLiteRepository.
type RunStore interface {
	SaveRun(ctx context.Context, run storage.Run) (int64, error)
}

// Notifier announces a persisted run to downstream consumers. Implemented
// by amqp.Client.
type Notifier interface {
	PublishSummaryRefreshed(ctx context.Context, runID int64, windowStart, windowEnd string, totalOrders int, totalRevenueCentavos int64) error
}

// Result is what one pipeline run produced.
type Result struct {
	RunID    int64 // 0 when no store is configured
	Summary  *report.Summary
	Payload  []byte
	Stats    []loader.TableStats
	Diag     *join.Diagnostics
	Duration time.Duration
}

type Pipeline struct {
	cfg      *config.Config
	logger   *log.Logger
	registry *metrics.Registry

	store    RunStore               // optional
	notifier Notifier               // optional
	exporter sheets.SummaryExporter // optional
}

func New(cfg *config.Config, logger *log.Logger, registry *metrics.Registry) *Pipeline {
	if logger == nil {
		logger = log.New(log.Config{Component: "pipeline"})
	}
	return &Pipeline{cfg: cfg, logger: logger, registry: registry}
}

// WithStore persists each run's summary.
func (p *Pipeline) WithStore(store RunStore) *Pipeline {
	p.store = store
	return p
}

// WithNotifier publishes a refresh message after each persisted run.
func (p *Pipeline) WithNotifier(n Notifier) *Pipeline {
	p.notifier = n
	return p
}

// WithExporter pushes each run's KPI block to an external sheet.
func (p *Pipeline) WithExporter(e sheets.SummaryExporter) *Pipeline {
	p.exporter = e
	return p
}

// Run executes one full batch: any fatal stage error aborts with no partial
// output. Notification and export failures after persistence are logged,
// not fatal.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	result, err := p.run(ctx)
	if p.registry != nil {
		p.registry.RunDurationSec.Observe(time.Since(started).Seconds())
		if err != nil {
			p.registry.RunsFailed.Inc()
		} else {
			p.registry.Runs.Inc()
		}
	}
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(started)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	ds, err := loader.New(p.cfg.DataDir, p.cfg.MaxDropRate, p.logger.WithComponent("loader")).Load()
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if p.registry != nil {
		for _, s := range ds.Stats {
			p.registry.RowsLoaded.Add(float64(s.Rows))
			p.registry.RowsDropped.Add(float64(s.Dropped))
		}
	}

	engine := join.New(p.cfg.DeliveredStatus, p.cfg.MaxJoinMissRate, p.logger.WithComponent("join"))
	facts, payments, diag, err := engine.Build(ds)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	if p.registry != nil {
		p.registry.JoinMisses.Add(float64(diag.MissingCustomer + diag.MissingSeller + diag.OrdersWithoutPayments))
	}

	start, end := p.cfg.Window()
	facts, payments, err = SelectWindow(facts, payments, start, end)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	if p.registry != nil {
		p.registry.FactRows.Add(float64(len(facts)))
	}
	p.logger.Info("Window selected",
		"start", start.String(), "end", end.String(), "fact_rows", len(facts))

	summary, err := report.Build(ctx, facts, payments, report.Options{
		WindowStart:     start,
		WindowEnd:       end,
		TopCategories:   p.cfg.TopCategories,
		TrendCategories: p.cfg.TrendCategories,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	payload, err := report.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}

	if err := p.writeOutput(payload); err != nil {
		return nil, err
	}

	result := &Result{Summary: summary, Payload: payload, Stats: ds.Stats, Diag: diag}

	if p.store != nil {
		runID, err := p.store.SaveRun(ctx, storage.Run{
			WindowStart:          start.String(),
			WindowEnd:            end.String(),
			FactRows:             len(facts),
			TotalOrders:          summary.KPIs.TotalOrders,
			TotalRevenueCentavos: summary.KPIs.TotalRevenue.Centavos,
			Payload:              payload,
		})
		if err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
		result.RunID = runID
	}

	if p.notifier != nil {
		if err := p.notifier.PublishSummaryRefreshed(ctx, result.RunID,
			start.String(), end.String(),
			summary.KPIs.TotalOrders, summary.KPIs.TotalRevenue.Centavos); err != nil {
			p.logger.Error("Failed to publish refresh notification", "error", err, "run_id", result.RunID)
		}
	}
	if p.exporter != nil {
		if err := p.exporter.ExportKPIs(ctx, summary.KPIs, start.String(), end.String()); err != nil {
			p.logger.Error("Failed to export KPIs", "error", err, "run_id", result.RunID)
		}
	}

	p.logger.Info("Pipeline run complete",
		"fact_rows", len(facts),
		"total_orders", summary.KPIs.TotalOrders,
		"total_revenue", summary.KPIs.TotalRevenue.String(),
		"run_id", result.RunID)

	return result, nil
}

func (p *Pipeline) writeOutput(payload []byte) error {
	if p.cfg.OutputPath == "" {
		return nil
	}
	if dir := filepath.Dir(p.cfg.OutputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(p.cfg.OutputPath, payload, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
