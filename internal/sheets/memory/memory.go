// Package memory is an in-process SummaryExporter used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"vendas/internal/report"
)

type Export struct {
	KPIs        report.KPIs
	WindowStart string
	WindowEnd   string
}

type Store struct {
	mu      sync.Mutex
	exports []Export
}

func New() *Store {
	return &Store{}
}

// ExportKPIs records the export.
func (s *Store) ExportKPIs(_ context.Context, kpis report.KPIs, windowStart, windowEnd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports = append(s.exports, Export{KPIs: kpis, WindowStart: windowStart, WindowEnd: windowEnd})
	return nil
}

// Exports returns a copy of everything exported so far.
func (s *Store) Exports() []Export {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Export, len(s.exports))
	copy(out, s.exports)
	return out
}
