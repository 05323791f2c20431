package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vendas/internal/config"
	"vendas/internal/loader"
	"vendas/internal/sheets/memory"
	"vendas/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeExtracts(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, loader.OrdersFile,
		"order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date\n"+
			"o1,c1,delivered,2017-05-10 10:30:00,2017-05-10 11:00:00,2017-05-11 08:00:00,2017-05-15 14:00:00,2017-05-20 00:00:00\n"+
			"o2,c2,delivered,2018-03-02 09:00:00,2018-03-02 10:00:00,2018-03-03 08:00:00,2018-03-12 16:00:00,2018-03-10 00:00:00\n"+
			"o3,c1,delivered,2016-10-01 08:00:00,,,,2016-10-20 00:00:00\n")
	writeFile(t, dir, loader.ItemsFile,
		"order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value\n"+
			"o1,1,p1,s1,2017-05-12 00:00:00,100.00,15.50\n"+
			"o1,2,p2,s1,2017-05-12 00:00:00,50.00,0.00\n"+
			"o2,1,p1,s2,2018-03-04 00:00:00,200.00,20.00\n"+
			"o3,1,p1,s1,2016-10-02 00:00:00,80.00,10.00\n")
	writeFile(t, dir, loader.PaymentsFile,
		"order_id,payment_sequential,payment_type,payment_installments,payment_value\n"+
			"o1,1,credit_card,3,165.50\n"+
			"o2,1,boleto,1,220.00\n"+
			"o3,1,voucher,1,90.00\n")
	writeFile(t, dir, loader.ReviewsFile,
		"review_id,order_id,review_score,review_comment_title,review_creation_date\n"+
			"r1,o1,5,,2017-05-16 00:00:00\n"+
			"r2,o2,2,,2018-03-13 00:00:00\n")
	writeFile(t, dir, loader.CustomersFile,
		"customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state\n"+
			"c1,u1,01310,sao paulo,SP\n"+
			"c2,u2,20040,rio de janeiro,RJ\n")
	writeFile(t, dir, loader.SellersFile,
		"seller_id,seller_zip_code_prefix,seller_city,seller_state\n"+
			"s1,80010,curitiba,PR\n"+
			"s2,01310,sao paulo,SP\n")
	writeFile(t, dir, loader.ProductsFile,
		"product_id,product_category_name\n"+
			"p1,beleza_saude\n"+
			"p2,brinquedos\n")
	writeFile(t, dir, loader.TranslationsFile,
		"product_category_name,product_category_name_english\n"+
			"beleza_saude,health_beauty\n"+
			"brinquedos,toys\n")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dataDir := t.TempDir()
	writeExtracts(t, dataDir)
	return &config.Config{
		Port:            "8081",
		DataDir:         dataDir,
		OutputPath:      filepath.Join(t.TempDir(), "dashboard_data.json"),
		SQLiteDBPath:    filepath.Join(t.TempDir(), "vendas.db"),
		DeliveredStatus: "delivered",
		WindowStart:     "2017-01",
		WindowEnd:       "2018-08",
		TopCategories:   15,
		TrendCategories: 5,
		MaxDropRate:     0.01,
		MaxJoinMissRate: 0.01,
	}
}

type fakeStore struct {
	saved []storage.Run
}

func (f *fakeStore) SaveRun(ctx context.Context, run storage.Run) (int64, error) {
	f.saved = append(f.saved, run)
	return int64(len(f.saved)), nil
}

type fakeNotifier struct {
	published []int64
}

func (f *fakeNotifier) PublishSummaryRefreshed(ctx context.Context, runID int64, windowStart, windowEnd string, totalOrders int, totalRevenueCentavos int64) error {
	f.published = append(f.published, runID)
	return nil
}

func TestPipelineRun(t *testing.T) {
	cfg := testConfig(t)
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	exporter := memory.New()

	p := New(cfg, nil, nil).WithStore(store).WithNotifier(notifier).WithExporter(exporter)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// o3 falls before the window; o1 has two items, o2 one.
	if result.Summary.Metadata.FactRows != 3 {
		t.Errorf("fact rows = %d, want 3", result.Summary.Metadata.FactRows)
	}
	if result.Summary.KPIs.TotalOrders != 2 {
		t.Errorf("total orders = %d, want 2", result.Summary.KPIs.TotalOrders)
	}
	// 100 + 15.50 + 50 + 200 + 20 = 385.50
	if result.Summary.KPIs.TotalRevenue.Centavos != 38550 {
		t.Errorf("total revenue = %d, want 38550", result.Summary.KPIs.TotalRevenue.Centavos)
	}

	if result.RunID != 1 || len(store.saved) != 1 {
		t.Errorf("run id = %d, saved = %d", result.RunID, len(store.saved))
	}
	if !bytes.Equal(store.saved[0].Payload, result.Payload) {
		t.Error("persisted payload differs from the result payload")
	}
	if len(notifier.published) != 1 || notifier.published[0] != 1 {
		t.Errorf("published = %v", notifier.published)
	}
	if exports := exporter.Exports(); len(exports) != 1 || exports[0].KPIs.TotalOrders != 2 {
		t.Errorf("exports = %+v", exports)
	}

	written, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(written, result.Payload) {
		t.Error("output file differs from the result payload")
	}
	if !strings.Contains(string(written), `"window_start": "2017-01"`) {
		t.Errorf("payload missing window metadata:\n%s", written)
	}
}

func TestPipelineRunIdempotent(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil, nil)

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if !bytes.Equal(first.Payload, second.Payload) {
		t.Fatal("identical input must produce a byte-identical payload")
	}
}

func TestPipelineRunMissingExtract(t *testing.T) {
	cfg := testConfig(t)
	if err := os.Remove(filepath.Join(cfg.DataDir, loader.OrdersFile)); err != nil {
		t.Fatal(err)
	}

	if _, err := New(cfg, nil, nil).Run(context.Background()); err == nil {
		t.Fatal("expected error when an extract is missing")
	}
}
