package report

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"vendas/internal/core"
)

func month(y int, m time.Month) core.Month { return core.Month{Year: y, Month: m} }

func fact(orderID string, m core.Month, price, freight int64) core.TransactionFact {
	return core.TransactionFact{
		OrderID:       orderID,
		PurchaseMonth: m,
		Price:         core.Money{Centavos: price},
		Freight:       core.Money{Centavos: freight},
		Category:      "health_beauty",
		CustomerID:    "c-" + orderID,
		CustomerState: "SP",
		SellerID:      "s1",
	}
}

func TestRevenueDynamicsMonthly(t *testing.T) {
	jan := month(2017, time.January)
	feb := month(2017, time.February)
	facts := []core.TransactionFact{
		fact("o1", jan, 10000, 1000),
		fact("o1", jan, 5000, 500), // second item, same order
		fact("o2", feb, 20000, 0),
	}

	monthly, _ := revenueDynamics(facts)

	if len(monthly) != 2 {
		t.Fatalf("months = %d, want 2", len(monthly))
	}
	if monthly[0].Month != "2017-01" || monthly[1].Month != "2017-02" {
		t.Errorf("months out of order: %s, %s", monthly[0].Month, monthly[1].Month)
	}
	if monthly[0].Revenue.Centavos != 15000 || monthly[0].Freight.Centavos != 1500 || monthly[0].Total.Centavos != 16500 {
		t.Errorf("jan row = %+v", monthly[0])
	}
	if monthly[0].Orders != 1 {
		t.Errorf("jan orders = %d, want 1 (items collapse per order)", monthly[0].Orders)
	}

	// Revenue conservation: the monthly totals partition fact revenue.
	var factSum, monthSum int64
	for _, f := range facts {
		factSum += f.Revenue().Centavos
	}
	for _, m := range monthly {
		monthSum += m.Total.Centavos
	}
	if factSum != monthSum {
		t.Errorf("monthly totals %d != fact revenue %d", monthSum, factSum)
	}
}

func TestRevenueDynamicsQuarterlyGrowth(t *testing.T) {
	facts := []core.TransactionFact{
		fact("o1", month(2017, time.February), 10000, 0),
		fact("o2", month(2017, time.May), 15000, 0),
		fact("o3", month(2017, time.August), 30000, 0),
	}

	_, quarterly := revenueDynamics(facts)

	if len(quarterly) != 3 {
		t.Fatalf("quarters = %d, want 3", len(quarterly))
	}
	if quarterly[0].Quarter != "2017Q1" || quarterly[0].GrowthPct != nil {
		t.Errorf("first quarter must omit growth, got %+v", quarterly[0])
	}
	if quarterly[1].GrowthPct == nil || math.Abs(float64(*quarterly[1].GrowthPct)-50) > 1e-9 {
		t.Errorf("Q2 growth = %v, want 50", quarterly[1].GrowthPct)
	}
	if quarterly[2].GrowthPct == nil || math.Abs(float64(*quarterly[2].GrowthPct)-100) > 1e-9 {
		t.Errorf("Q3 growth = %v, want 100", quarterly[2].GrowthPct)
	}
}

func TestRevenueDynamicsZeroPreviousQuarter(t *testing.T) {
	// A quarter with only free items has zero revenue; the next quarter
	// must omit growth instead of dividing by zero.
	facts := []core.TransactionFact{
		fact("o1", month(2017, time.January), 0, 0),
		fact("o2", month(2017, time.April), 10000, 0),
	}

	_, quarterly := revenueDynamics(facts)
	if len(quarterly) != 2 {
		t.Fatalf("quarters = %d, want 2", len(quarterly))
	}
	if quarterly[1].GrowthPct != nil {
		t.Errorf("growth after a zero-revenue quarter = %v, want omitted", *quarterly[1].GrowthPct)
	}
}

func payment(orderID, typ string, installments int, total int64) core.OrderPayment {
	return core.OrderPayment{
		OrderID:         orderID,
		PurchaseMonth:   month(2017, time.March),
		Total:           core.Money{Centavos: total},
		DominantType:    typ,
		MaxInstallments: installments,
	}
}

func TestPaymentIntelligence(t *testing.T) {
	payments := []core.OrderPayment{
		payment("o1", core.PaymentCreditCard, 3, 30000),
		payment("o2", core.PaymentCreditCard, 1, 10000),
		payment("o3", core.PaymentBoleto, 1, 20000),
		payment("o4", core.PaymentVoucher, 1, 5000),
	}

	shares, buckets := paymentIntelligence(payments)

	if len(shares) != 3 {
		t.Fatalf("payment types = %d, want 3", len(shares))
	}
	if shares[0].Type != core.PaymentCreditCard || shares[0].Orders != 2 {
		t.Errorf("top share = %+v, want credit_card with 2 orders", shares[0])
	}
	var pctSum float64
	for _, s := range shares {
		pctSum += float64(s.PctOfTotal)
	}
	if math.Abs(pctSum-100) > 1e-9 {
		t.Errorf("pct_of_total sums to %f, want 100", pctSum)
	}

	// Installment buckets cover credit-card orders only.
	if len(buckets) != 2 {
		t.Fatalf("installment buckets = %d, want 2", len(buckets))
	}
	if buckets[0].Installments != 1 || buckets[1].Installments != 3 {
		t.Errorf("buckets not sorted by installments: %+v", buckets)
	}
	var bucketOrders int
	for _, b := range buckets {
		bucketOrders += b.Orders
	}
	if bucketOrders != 2 {
		t.Errorf("bucket orders = %d, want 2 (boleto and voucher excluded)", bucketOrders)
	}
}

func TestPaymentIntelligenceEmpty(t *testing.T) {
	shares, buckets := paymentIntelligence(nil)
	if len(shares) != 0 || len(buckets) != 0 {
		t.Errorf("empty input should produce empty output, got %d/%d", len(shares), len(buckets))
	}
}

func TestCategoryPerformance(t *testing.T) {
	jan := month(2017, time.January)
	feb := month(2017, time.February)
	mk := func(orderID, category string, m core.Month, price int64) core.TransactionFact {
		f := fact(orderID, m, price, 0)
		f.Category = category
		return f
	}
	facts := []core.TransactionFact{
		mk("o1", "health_beauty", jan, 50000),
		mk("o2", "health_beauty", feb, 30000),
		mk("o3", "toys", jan, 40000),
		mk("o4", "garden_tools", jan, 20000),
		mk("o5", "auto", feb, 10000),
	}

	ranking, monthly := categoryPerformance(facts, 3, 2)

	if len(ranking) != 3 {
		t.Fatalf("ranking = %d rows, want top 3", len(ranking))
	}
	if ranking[0].Category != "health_beauty" || ranking[1].Category != "toys" || ranking[2].Category != "garden_tools" {
		t.Errorf("ranking order = %+v", ranking)
	}
	if ranking[0].Revenue.Centavos != 80000 || ranking[0].Orders != 2 {
		t.Errorf("top row = %+v", ranking[0])
	}
	if ranking[0].AvgPrice.Centavos != 40000 {
		t.Errorf("avg price = %d, want 40000", ranking[0].AvgPrice.Centavos)
	}

	// Trend series covers only the top two categories, month then name.
	want := []CategoryMonth{
		{Month: "2017-01", Category: "health_beauty", Revenue: core.Money{Centavos: 50000}},
		{Month: "2017-01", Category: "toys", Revenue: core.Money{Centavos: 40000}},
		{Month: "2017-02", Category: "health_beauty", Revenue: core.Money{Centavos: 30000}},
	}
	if len(monthly) != len(want) {
		t.Fatalf("series = %d points, want %d", len(monthly), len(want))
	}
	for i := range want {
		if monthly[i] != want[i] {
			t.Errorf("series[%d] = %+v, want %+v", i, monthly[i], want[i])
		}
	}
}

func TestGeographicDistribution(t *testing.T) {
	jan := month(2017, time.January)
	mk := func(orderID, customerID, state string, price int64) core.TransactionFact {
		f := fact(orderID, jan, price, 0)
		f.CustomerID = customerID
		f.CustomerState = state
		return f
	}
	facts := []core.TransactionFact{
		mk("o1", "c1", "SP", 60000),
		mk("o2", "c2", "SP", 20000),
		mk("o3", "c3", "RJ", 20000),
	}

	shares := geographicDistribution(facts)

	if len(shares) != 2 {
		t.Fatalf("states = %d, want 2", len(shares))
	}
	if shares[0].State != "SP" || shares[0].Orders != 2 || shares[0].Customers != 2 {
		t.Errorf("top state = %+v", shares[0])
	}
	if math.Abs(float64(shares[0].PctOfTotal)-80) > 1e-9 {
		t.Errorf("SP pct = %f, want 80", float64(shares[0].PctOfTotal))
	}
	var pctSum float64
	for _, s := range shares {
		pctSum += float64(s.PctOfTotal)
	}
	if math.Abs(pctSum-100) > 1e-9 {
		t.Errorf("state pcts sum to %f, want 100", pctSum)
	}
}

func TestOperationalFinance(t *testing.T) {
	jan := month(2017, time.January)
	purchased := time.Date(2017, time.January, 10, 12, 0, 0, 0, time.UTC)
	mk := func(orderID string, deliveredAfterDays float64, estimatedAfterDays float64, score int) core.TransactionFact {
		f := fact(orderID, jan, 10000, 0)
		f.PurchasedAt = purchased
		f.DeliveredAt = purchased.Add(time.Duration(deliveredAfterDays * 24 * float64(time.Hour)))
		f.EstimatedAt = purchased.Add(time.Duration(estimatedAfterDays * 24 * float64(time.Hour)))
		f.ReviewScore = score
		return f
	}
	facts := []core.TransactionFact{
		mk("o1", 5.9, 10, 5), // 5.9 days truncates to 5
		mk("o2", 9, 7, 1),    // late
	}
	noDelivery := fact("o3", jan, 10000, 0)
	noDelivery.PurchasedAt = purchased
	noDelivery.ReviewScore = 5
	facts = append(facts, noDelivery)

	delivery, histogram := operationalFinance(facts)

	if len(delivery) != 1 {
		t.Fatalf("delivery months = %d, want 1", len(delivery))
	}
	d := delivery[0]
	if d.Month != "2017-01" {
		t.Errorf("month = %s", d.Month)
	}
	// (5 + 9) / 2 orders with both timestamps; o3 excluded.
	if math.Abs(float64(d.AvgDays)-7) > 1e-9 {
		t.Errorf("avg days = %f, want 7.0", float64(d.AvgDays))
	}
	if math.Abs(float64(d.OnTimePct)-50) > 1e-9 {
		t.Errorf("on-time = %f, want 50", float64(d.OnTimePct))
	}

	// Histogram keeps only scores that occur: 1 and 5 here.
	if len(histogram) != 2 {
		t.Fatalf("histogram = %+v, want 2 buckets", histogram)
	}
	if histogram[0].Score != 1 || histogram[0].Orders != 1 {
		t.Errorf("bucket[0] = %+v", histogram[0])
	}
	if histogram[1].Score != 5 || histogram[1].Orders != 2 {
		t.Errorf("bucket[1] = %+v", histogram[1])
	}
	var pctSum float64
	for _, b := range histogram {
		pctSum += float64(b.Pct)
	}
	if math.Abs(pctSum-100) > 1e-9 {
		t.Errorf("histogram pcts sum to %f, want 100", pctSum)
	}
}

func TestComputeKPIs(t *testing.T) {
	jan := month(2017, time.January)
	purchased := time.Date(2017, time.January, 10, 12, 0, 0, 0, time.UTC)

	f1 := fact("o1", jan, 10000, 1000)
	f1.CustomerID = "c1"
	f1.SellerID = "s1"
	f1.ReviewScore = 5
	f1.PurchasedAt = purchased
	f1.DeliveredAt = purchased.Add(4 * 24 * time.Hour)
	f1.EstimatedAt = purchased.Add(10 * 24 * time.Hour)

	f2 := f1 // second item of the same order
	f2.Price = core.Money{Centavos: 5000}
	f2.Freight = core.Money{Centavos: 0}

	f3 := fact("o2", jan, 4000, 0)
	f3.CustomerID = "c2"
	f3.SellerID = "s2"
	f3.ReviewScore = 4

	facts := []core.TransactionFact{f1, f2, f3}
	payments := []core.OrderPayment{
		payment("o1", core.PaymentCreditCard, 3, 16000),
		payment("o2", core.PaymentBoleto, 1, 4000),
	}

	k := computeKPIs(facts, payments)

	if k.TotalRevenue.Centavos != 20000 {
		t.Errorf("total revenue = %d, want 20000", k.TotalRevenue.Centavos)
	}
	if k.TotalOrders != 2 || k.TotalCustomers != 2 || k.TotalSellers != 2 {
		t.Errorf("counts = %d/%d/%d, want 2/2/2", k.TotalOrders, k.TotalCustomers, k.TotalSellers)
	}
	if k.AvgOrderValue.Centavos != 10000 {
		t.Errorf("avg order value = %d, want 10000", k.AvgOrderValue.Centavos)
	}
	if math.Abs(float64(k.AvgReviewScore)-4.5) > 1e-9 {
		t.Errorf("avg review = %f, want 4.5", float64(k.AvgReviewScore))
	}
	if math.Abs(float64(k.FiveStarPct)-50) > 1e-9 {
		t.Errorf("five star = %f, want 50", float64(k.FiveStarPct))
	}
	// Only o1 has delivery timestamps; it arrived early.
	if math.Abs(float64(k.OnTimePct)-100) > 1e-9 || math.Abs(float64(k.AvgDeliveryDays)-4) > 1e-9 {
		t.Errorf("delivery KPIs = %f / %f, want 100 / 4", float64(k.OnTimePct), float64(k.AvgDeliveryDays))
	}
	if math.Abs(float64(k.CreditCardPct)-80) > 1e-9 {
		t.Errorf("credit card pct = %f, want 80", float64(k.CreditCardPct))
	}
}

func TestBuildAndMarshalDeterministic(t *testing.T) {
	jan := month(2017, time.January)
	facts := []core.TransactionFact{
		fact("o1", jan, 10000, 1000),
		fact("o2", jan, 5000, 500),
	}
	payments := []core.OrderPayment{
		payment("o1", core.PaymentCreditCard, 2, 11000),
		payment("o2", core.PaymentBoleto, 1, 5500),
	}
	opts := Options{
		WindowStart:     jan,
		WindowEnd:       month(2018, time.August),
		TopCategories:   15,
		TrendCategories: 5,
	}

	first, err := Build(context.Background(), facts, payments, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := Build(context.Background(), facts, payments, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	a, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	b, err := Marshal(second)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical input must serialize byte-identically")
	}
	if a[len(a)-1] != '\n' {
		t.Error("payload must end with a newline")
	}

	if first.Metadata.WindowStart != "2017-01" || first.Metadata.WindowEnd != "2018-08" || first.Metadata.FactRows != 2 {
		t.Errorf("metadata = %+v", first.Metadata)
	}
}

func TestFixedPrecisionMarshal(t *testing.T) {
	cases := []struct {
		name string
		got  []byte
		want string
	}{
		{"percent", mustMarshal(t, Percent(33.333333)), "33.3"},
		{"percent zero", mustMarshal(t, Percent(0)), "0.0"},
		{"days", mustMarshal(t, Days(12.04)), "12.0"},
		{"score", mustMarshal(t, Score(4.096)), "4.10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.want {
				t.Errorf("marshaled %s, want %s", tc.got, tc.want)
			}
		})
	}
}

func mustMarshal(t *testing.T, v interface{ MarshalJSON() ([]byte, error) }) []byte {
	t.Helper()
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	return data
}
