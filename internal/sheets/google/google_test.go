package google

import (
	"context"
	"testing"

	"vendas/internal/core"
	"vendas/internal/report"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error without GOOGLE_SPREADSHEET_ID")
	}
}

func TestKPIRows(t *testing.T) {
	kpis := report.KPIs{
		TotalRevenue:   core.Money{Centavos: 1594244730},
		TotalOrders:    96478,
		AvgOrderValue:  core.Money{Centavos: 16524},
		TotalCustomers: 96096,
		TotalSellers:   2970,
		AvgReviewScore: report.Score(4.09),
		CreditCardPct:  report.Percent(76.5),
	}

	rows := KPIRows(kpis, "2017-01", "2018-08")

	if len(rows) != 11 {
		t.Fatalf("rows = %d, want 11", len(rows))
	}
	if rows[0][1] != "2017-01 to 2018-08" {
		t.Errorf("window row = %v", rows[0])
	}
	if rows[1][1] != "15942447.30" {
		t.Errorf("revenue row = %v", rows[1])
	}
	if rows[2][1] != 96478 {
		t.Errorf("orders row = %v", rows[2])
	}
	for _, row := range rows {
		if len(row) != 2 {
			t.Fatalf("row %v should have a label and a value", row)
		}
	}
}
