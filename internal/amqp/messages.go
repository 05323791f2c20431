package amqp

import (
	"encoding/json"
	"time"
)

// SummaryRefreshedMessage tells downstream consumers (the dashboard cache,
// report subscribers) that a new summary run is available. It carries run
// identity and headline numbers only; consumers fetch the payload from the
// API or the run store.
type SummaryRefreshedMessage struct {
	RunID                int64     `json:"run_id"`
	WindowStart          string    `json:"window_start"`
	WindowEnd            string    `json:"window_end"`
	TotalOrders          int       `json:"total_orders"`
	TotalRevenueCentavos int64     `json:"total_revenue_centavos"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// NewSummaryRefreshedMessage stamps a message with the current time.
func NewSummaryRefreshedMessage(runID int64, windowStart, windowEnd string, totalOrders int, totalRevenueCentavos int64) *SummaryRefreshedMessage {
	return &SummaryRefreshedMessage{
		RunID:                runID,
		WindowStart:          windowStart,
		WindowEnd:            windowEnd,
		TotalOrders:          totalOrders,
		TotalRevenueCentavos: totalRevenueCentavos,
		GeneratedAt:          time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SummaryRefreshedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SummaryRefreshedMessageFromJSON parses a message from JSON bytes.
func SummaryRefreshedMessageFromJSON(data []byte) (*SummaryRefreshedMessage, error) {
	var msg SummaryRefreshedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
