package core

import (
	"errors"
	"time"
)

// Order statuses as they appear in the orders extract. Only delivered
// orders participate in financial aggregation.
const (
	StatusDelivered   = "delivered"
	StatusCanceled    = "canceled"
	StatusUnavailable = "unavailable"
	StatusProcessing  = "processing"
	StatusShipped     = "shipped"
	StatusInvoiced    = "invoiced"
)

// Payment types as they appear in the payments extract.
const (
	PaymentCreditCard = "credit_card"
	PaymentBoleto     = "boleto"
	PaymentVoucher    = "voucher"
	PaymentDebitCard  = "debit_card"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month, want YYYY-MM")

	// ErrSchemaViolation signals a required column missing from a source
	// table. Fatal: the run aborts with no partial output.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrExcessiveDataLoss signals a drop or join-miss rate above the
	// configured threshold, i.e. an upstream data-quality regression
	// rather than normal sparsity. Fatal.
	ErrExcessiveDataLoss = errors.New("excessive data loss")

	// ErrInvalidWindow signals a time window whose start month is after
	// its end month.
	ErrInvalidWindow = errors.New("invalid time window")
)

type (
	// Order is one row of the orders extract. Optional timestamps are the
	// zero time when the source field is empty.
	Order struct {
		ID                  string
		CustomerID          string
		Status              string
		PurchasedAt         time.Time
		ApprovedAt          time.Time
		DeliveredCarrierAt  time.Time
		DeliveredAt         time.Time
		EstimatedDeliveryAt time.Time
	}

	// OrderItem is one item row; an order can have many.
	OrderItem struct {
		OrderID   string
		Sequence  int
		ProductID string
		SellerID  string
		Price     Money
		Freight   Money
	}

	// Payment is one payment row; an order can be split across several
	// (e.g. credit card plus voucher).
	Payment struct {
		OrderID      string
		Sequence     int
		Type         string
		Installments int
		Value        Money
	}

	// Review is one review row. Score is 1-5.
	Review struct {
		ID        string
		OrderID   string
		Score     int
		CreatedAt time.Time
	}

	Customer struct {
		ID        string
		ZipPrefix string
		City      string
		State     string
	}

	Seller struct {
		ID        string
		ZipPrefix string
		City      string
		State     string
	}

	// Product carries the raw, source-language category name; translation
	// to the display name happens in the join engine.
	Product struct {
		ID       string
		Category string
	}
)
