package core

import (
	"strconv"
	"time"
)

// Month is a calendar (year, month) pair used for time-windowing and
// monthly grouping.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses the "YYYY-MM" form used in configuration and output.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the calendar month a timestamp falls in.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return strconv.Itoa(m.Year) + "-" + pad2(int64(m.Month))
}

// Compare orders two months chronologically: -1, 0 or +1.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year != o.Year:
		if m.Year < o.Year {
			return -1
		}
		return 1
	case m.Month != o.Month:
		if m.Month < o.Month {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	return m.Compare(o) < 0
}

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool {
	return m.Compare(o) > 0
}

// In reports whether m lies in the inclusive [start, end] range.
func (m Month) In(start, end Month) bool {
	return !m.Before(start) && !m.After(end)
}

// Quarter returns the calendar quarter containing the month.
func (m Month) Quarter() Quarter {
	return Quarter{Year: m.Year, Q: (int(m.Month)-1)/3 + 1}
}

// Quarter is a calendar (year, quarter) pair.
type Quarter struct {
	Year int
	Q    int // 1-4
}

func (q Quarter) String() string {
	return strconv.Itoa(q.Year) + "Q" + strconv.Itoa(q.Q)
}

// Compare orders two quarters chronologically: -1, 0 or +1.
func (q Quarter) Compare(o Quarter) int {
	switch {
	case q.Year != o.Year:
		if q.Year < o.Year {
			return -1
		}
		return 1
	case q.Q != o.Q:
		if q.Q < o.Q {
			return -1
		}
		return 1
	default:
		return 0
	}
}
