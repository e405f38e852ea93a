package solcgt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a closed UTC time range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the period.
func (p Period) Contains(ts time.Time) bool {
	return !ts.Before(p.Start) && !ts.After(p.End)
}

func (p Period) String() string {
	return fmt.Sprintf("%s..%s", p.Start.UTC().Format("2006-01-02"), p.End.UTC().Format("2006-01-02"))
}

// ParseFinancialYear returns the UTC bounds of an Australian financial year
// labelled "YYYY-YYYY", running 1 July to 30 June.
func ParseFinancialYear(label string) (Period, error) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("financial year label must be in 'YYYY-YYYY' format: %q", label)
	}
	startYear, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("invalid financial year start %q: %w", parts[0], err)
	}
	endYear, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid financial year end %q: %w", parts[1], err)
	}
	if endYear != startYear+1 {
		return Period{}, fmt.Errorf("financial year end must be start + 1 year: %q", label)
	}
	return Period{
		Start: time.Date(startYear, time.July, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(endYear, time.June, 30, 23, 59, 59, 0, time.UTC),
	}, nil
}

// FinancialYearOf returns the label of the financial year containing ts.
func FinancialYearOf(ts time.Time) string {
	ts = ts.UTC()
	year := ts.Year()
	if ts.Month() < time.July {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}
