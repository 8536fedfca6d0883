// Package dataset loads the sales table the assistant answers questions about.
package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Column headers the loader requires. Matching is case-insensitive.
const (
	ColumnItemID      = "Item ID"
	ColumnCustomerID  = "Customer ID"
	ColumnOrderDate   = "Order Date"
	ColumnTotalPrice  = "Total Price"
	ColumnQtyShipped  = "Qty Shipped"
	ColumnQtyReturned = "Qty Returned"
	ColumnMonth       = "Month"
)

// RequiredColumns lists the headers every dataset must carry.
var RequiredColumns = []string{
	ColumnItemID,
	ColumnCustomerID,
	ColumnOrderDate,
	ColumnTotalPrice,
	ColumnQtyShipped,
	ColumnQtyReturned,
}

// Month is a calendar month bucket derived from an order date.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is chronologically earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// ParseMonth parses the YYYY-MM form produced by String.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Record is a single sales row.
type Record struct {
	ItemID      string
	CustomerID  string
	OrderDate   time.Time
	TotalPrice  decimal.Decimal
	QtyShipped  decimal.Decimal
	QtyReturned decimal.Decimal
	Month       Month
}

// Table is an immutable, loaded dataset. It is shared by every request and must not
// be modified after construction.
type Table struct {
	Path     string
	LoadedAt time.Time
	records  []Record
}

// NewTable builds a table from records, deriving each record's Month from its order date.
func NewTable(path string, records []Record) *Table {
	rows := make([]Record, len(records))
	for i, r := range records {
		r.Month = MonthOf(r.OrderDate)
		rows[i] = r
	}
	return &Table{
		Path:     path,
		LoadedAt: time.Now().UTC(),
		records:  rows,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Each calls fn for every row in file order.
func (t *Table) Each(fn func(r Record)) {
	if t == nil {
		return
	}
	for _, r := range t.records {
		fn(r)
	}
}

// Records returns a copy of the rows.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Months returns the distinct months present, in chronological order.
func (t *Table) Months() []Month {
	seen := make(map[Month]bool)
	var months []Month
	t.Each(func(r Record) {
		if !seen[r.Month] {
			seen[r.Month] = true
			months = append(months, r.Month)
		}
	})
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
