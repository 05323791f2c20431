// Package loader reads the eight Olist CSV extracts into typed in-memory
// relations. Rows with unparseable mandatory fields are dropped and counted;
// a missing required column or a drop rate above the configured threshold
// aborts the run.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vendas/internal/core"
	"vendas/internal/log"
)

// Source file names as published in the Olist Kaggle dataset.
const (
	OrdersFile       = "olist_orders_dataset.csv"
	ItemsFile        = "olist_order_items_dataset.csv"
	PaymentsFile     = "olist_order_payments_dataset.csv"
	ReviewsFile      = "olist_order_reviews_dataset.csv"
	CustomersFile    = "olist_customers_dataset.csv"
	SellersFile      = "olist_sellers_dataset.csv"
	ProductsFile     = "olist_products_dataset.csv"
	TranslationsFile = "product_category_name_translation.csv"
)

const timeLayout = "2006-01-02 15:04:05"

// TableStats counts how many rows a table contributed and how many were
// dropped as unparseable.
type TableStats struct {
	Table   string
	Rows    int
	Dropped int
}

// Dataset holds the eight loaded relations plus per-table load statistics.
type Dataset struct {
	Orders       []core.Order
	Items        []core.OrderItem
	Payments     []core.Payment
	Reviews      []core.Review
	Customers    []core.Customer
	Sellers      []core.Seller
	Products     []core.Product
	Translations map[string]string // raw category name -> English display name

	Stats []TableStats
}

type Loader struct {
	dir         string
	maxDropRate float64
	logger      *log.Logger
}

// New creates a loader reading from dir. maxDropRate is the fraction of
// unparseable rows per table tolerated before the run aborts.
func New(dir string, maxDropRate float64, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(log.Config{Component: "loader"})
	}
	return &Loader{dir: dir, maxDropRate: maxDropRate, logger: logger}
}

// Load reads all eight tables. Any schema violation or excessive per-table
// drop rate returns a fatal error and no dataset.
func (l *Loader) Load() (*Dataset, error) {
	ds := &Dataset{Translations: make(map[string]string)}

	steps := []struct {
		file     string
		required []string
		load     func(*table) int
	}{
		{OrdersFile, []string{"order_id", "customer_id", "order_status", "order_purchase_timestamp"},
			func(t *table) int { return l.loadOrders(t, ds) }},
		{ItemsFile, []string{"order_id", "order_item_id", "product_id", "seller_id", "price", "freight_value"},
			func(t *table) int { return l.loadItems(t, ds) }},
		{PaymentsFile, []string{"order_id", "payment_sequential", "payment_type", "payment_installments", "payment_value"},
			func(t *table) int { return l.loadPayments(t, ds) }},
		{ReviewsFile, []string{"review_id", "order_id", "review_score"},
			func(t *table) int { return l.loadReviews(t, ds) }},
		{CustomersFile, []string{"customer_id", "customer_zip_code_prefix", "customer_city", "customer_state"},
			func(t *table) int { return l.loadCustomers(t, ds) }},
		{SellersFile, []string{"seller_id", "seller_zip_code_prefix", "seller_city", "seller_state"},
			func(t *table) int { return l.loadSellers(t, ds) }},
		{ProductsFile, []string{"product_id", "product_category_name"},
			func(t *table) int { return l.loadProducts(t, ds) }},
		{TranslationsFile, []string{"product_category_name", "product_category_name_english"},
			func(t *table) int { return l.loadTranslations(t, ds) }},
	}

	for _, step := range steps {
		t, err := l.open(step.file, step.required)
		if err != nil {
			return nil, err
		}
		dropped := step.load(t)
		total := len(t.rows)
		stats := TableStats{Table: step.file, Rows: total, Dropped: dropped}
		ds.Stats = append(ds.Stats, stats)

		if total > 0 && float64(dropped)/float64(total) > l.maxDropRate {
			return nil, fmt.Errorf("%w: table %s dropped %d of %d rows (threshold %.2f%%)",
				core.ErrExcessiveDataLoss, step.file, dropped, total, l.maxDropRate*100)
		}
		l.logger.Info("Table loaded", "table", step.file, "rows", total, "dropped", dropped)
	}

	return ds, nil
}

// table is one fully read CSV file with a header index.
type table struct {
	name   string
	index  map[string]int
	rows   [][]string
	header []string
}

func (l *Loader) open(file string, required []string) (*table, error) {
	path := filepath.Join(l.dir, file)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row-shape validation happens per row

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", file, err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: table %s is missing required column %q", core.ErrSchemaViolation, file, col)
		}
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		rows = append(rows, row)
	}
	return &table{name: file, index: index, rows: rows, header: header}, nil
}

// get returns the named column of a row, or "" when the row is too short.
func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (l *Loader) loadOrders(t *table, ds *Dataset) (dropped int) {
	for _, row := range t.rows {
		id := t.get(row, "order_id")
		customerID := t.get(row, "customer_id")
		status := t.get(row, "order_status")
		purchasedAt, err := parseTime(t.get(row, "order_purchase_timestamp"))
		if id == "" || customerID == "" || status == "" || err != nil {
			dropped++
			continue
		}
		ds.Orders = append(ds.Orders, core.Order{
			ID:                  id,
			CustomerID:          customerID,
			Status:              status,
			PurchasedAt:         purchasedAt,
			ApprovedAt:          parseOptionalTime(t.get(row, "order_approved_at")),
			DeliveredCarrierAt:  parseOptionalTime(t.get(row, "order_delivered_carrier_date")),
			DeliveredAt:         parseOptionalTime(t.get(row, "order_delivered_customer_date")),
			EstimatedDeliveryAt: parseOptionalTime(t.get(row, "order_estimated_delivery_date")),
		})
	}
	return dropped
}

func (l *Loader) loadItems(t *table, ds *Dataset) (dropped int) {
	for _, row := range t.rows {
		orderID := t.get(row, "order_id")
		seq, seqErr := strconv.Atoi(t.get(row, "order_item_id"))
		productID := t.get(row, "product_id")
		sellerID := t.get(row, "seller_id")
		price, priceErr := core.ParseDecimalToCentavos(t.get(row, "price"))
		freight, freightErr := core.ParseDecimalToCentavos(t.get(row, "freight_value"))
		if orderID == "" || productID == "" || sellerID == "" || seqErr != nil || priceErr != nil || freightErr != nil {
			dropped++
			continue
		}
		ds.Items = append(ds.Items, core.OrderItem{
			OrderID:   orderID,
			Sequence:  seq,
			ProductID: productID,
			SellerID:  sellerID,
			Price:     core.Money{Centavos: price},
			Freight:   core.Money{Centavos: freight},
		})
	}
	return dropped
}

func (l *Loader) loadPayments(t *table, ds *Dataset) (dropped int) {
	for _, row := range t.rows {
		orderID := t.get(row, "order_id")
		seq, seqErr := strconv.Atoi(t.get(row, "payment_sequential"))
		payType := t.get(row, "payment_type")
		installments, instErr := strconv.Atoi(t.get(row, "payment_installments"))
		value, valErr := core.ParseDecimalToCentavos(t.get(row, "payment_value"))
		if orderID == "" || payType == "" || seqErr != nil || instErr != nil || installments < 0 || valErr != nil {
			dropped++
			continue
		}
		// The dataset carries a handful of installment counts of 0 on
		// single-shot payments; clamp to the >=1 invariant.
		if installments == 0 {
			installments = 1
		}
		ds.Payments = append(ds.Payments, core.Payment{
			OrderID:      orderID,
			Sequence:     seq,
			Type:         payType,
			Installments: installments,
			Value:        core.Money{Centavos: value},
		})
	}
	return dropped
}

func (l *Loader) loadReviews(t *table, ds *Dataset) (dropped int) {
	for _, row := range t.rows {
		id := t.get(row, "review_id")
		orderID := t.get(row, "order_id")
		score, err := strconv.Atoi(t.get(row, "review_score"))
		if id == "" || orderID == "" || err != nil || score < 1 || score > 5 {
			dropped++
			continue
		}
		ds.Reviews = append(ds.Reviews, core.Review{
			ID:        id,
			OrderID:   orderID,
			Score:     score,
			CreatedAt: parseOptionalTime(t.get(row, "review_creation_date")),
		})
	}
	return dropped
}

func (l *Loader) loadCustomers(t *table, ds *Dataset) (dropped int) {
	for _, row := range t.rows {
		id := t.get(row, "customer_id")
		state := t.get(row, "customer_state")
		if id == "" || state == "" {
			dropped++
			continue
		}
		ds.Customers = append(ds.Customers, core.Customer{
			ID:        id,
			ZipPrefix: t.get(row, "customer_zip_code_prefix"),
			City:      t.get(row, "customer_city"),
			State:     state,
		})
	}
	return dropped
}

func (l *Loader) loadSellers(t *table, ds *Dataset) (dropped int) {
	for _, row := range t.rows {
		id := t.get(row, "seller_id")
		state := t.get(row, "seller_state")
		if id == "" || state == "" {
			dropped++
			continue
		}
		ds.Sellers = append(ds.Sellers, core.Seller{
			ID:        id,
			ZipPrefix: t.get(row, "seller_zip_code_prefix"),
			City:      t.get(row, "seller_city"),
			State:     state,
		})
	}
	return dropped
}

func (l *Loader) loadProducts(t *table, ds *Dataset) (dropped int) {
	for _, row := range t.rows {
		id := t.get(row, "product_id")
		if id == "" {
			dropped++
			continue
		}
		// An empty category is valid: the join engine labels it "other".
		ds.Products = append(ds.Products, core.Product{
			ID:       id,
			Category: t.get(row, "product_category_name"),
		})
	}
	return dropped
}

func (l *Loader) loadTranslations(t *table, ds *Dataset) (dropped int) {
	for _, row := range t.rows {
		raw := t.get(row, "product_category_name")
		english := t.get(row, "product_category_name_english")
		if raw == "" || english == "" {
			dropped++
			continue
		}
		ds.Translations[raw] = english
	}
	return dropped
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// parseOptionalTime returns the zero time for empty or malformed optional
// timestamp fields.
func parseOptionalTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
