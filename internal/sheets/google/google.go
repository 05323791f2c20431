// Package google exports summary KPIs to a Google Sheets spreadsheet using
// Service Account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"vendas/internal/report"
	ports "vendas/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	kpiSheet      string
}

var _ ports.SummaryExporter = (*Client)(nil)

// NewFromEnv creates a Sheets exporter from the environment.
// Required: GOOGLE_SPREADSHEET_ID plus Service Account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS. Optional: GOOGLE_KPI_SHEET_NAME
// (default "KPIs").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	kpiSheet := strings.TrimSpace(os.Getenv("GOOGLE_KPI_SHEET_NAME"))
	if kpiSheet == "" {
		kpiSheet = "KPIs"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		kpiSheet:      kpiSheet,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportKPIs overwrites the KPI block starting at A1 of the configured
// sheet with a labeled two-column table.
func (c *Client) ExportKPIs(ctx context.Context, kpis report.KPIs, windowStart, windowEnd string) error {
	values := KPIRows(kpis, windowStart, windowEnd)

	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, c.kpiSheet+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update KPI sheet: %w", err)
	}
	return nil
}

// KPIRows renders the KPI block as label/value rows. Exported for the
// in-memory test double.
func KPIRows(kpis report.KPIs, windowStart, windowEnd string) [][]interface{} {
	return [][]interface{}{
		{"Window", windowStart + " to " + windowEnd},
		{"Total Revenue (BRL)", kpis.TotalRevenue.String()},
		{"Total Orders", kpis.TotalOrders},
		{"Avg Order Value (BRL)", kpis.AvgOrderValue.String()},
		{"Total Customers", kpis.TotalCustomers},
		{"Total Sellers", kpis.TotalSellers},
		{"Avg Review Score", float64(kpis.AvgReviewScore)},
		{"Five Star %", float64(kpis.FiveStarPct)},
		{"On Time %", float64(kpis.OnTimePct)},
		{"Avg Delivery Days", float64(kpis.AvgDeliveryDays)},
		{"Credit Card %", float64(kpis.CreditCardPct)},
	}
}
