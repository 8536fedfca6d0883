package intents

import (
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"salesbi/internal/dataset"
)

// Point is one grouped measure.
type Point struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Result is the output of one aggregation. Points are ordered for presentation:
// descending by value for top-N intents, chronologically for monthly sales.
type Result struct {
	KeyLabel   string  `json:"key_label"`
	ValueLabel string  `json:"value_label"`
	Points     []Point `json:"points"`
}

// Len returns the number of points.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Points)
}

// Keys returns the grouping keys in order.
func (r *Result) Keys() []string {
	keys := make([]string, r.Len())
	for i, p := range r.Points {
		keys[i] = p.Key
	}
	return keys
}

// Values returns the measures in order.
func (r *Result) Values() []float64 {
	values := make([]float64, r.Len())
	for i, p := range r.Points {
		values[i] = p.Value
	}
	return values
}

type group struct {
	key string
	sum decimal.Decimal
}

// sumBy groups the table by key and sums measure exactly. Records with a blank key
// belong to no group. Groups come back in ascending key order.
func sumBy(t *dataset.Table, key func(dataset.Record) string, measure func(dataset.Record) decimal.Decimal) []group {
	index := make(map[string]int)
	var groups []group
	t.Each(func(r dataset.Record) {
		k := key(r)
		if k == "" {
			return
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k, sum: decimal.Zero})
		}
		groups[i].sum = groups[i].sum.Add(measure(r))
	})

	sort.SliceStable(groups, func(i, j int) bool { return keyLess(groups[i].key, groups[j].key) })
	return groups
}

// keyLess orders numeric keys before text keys. Numeric keys compare by value (then
// as text when equal, so "1" and "1.0" stay distinct); text keys compare as strings.
func keyLess(a, b string) bool {
	fa, numA := numericKey(a)
	fb, numB := numericKey(b)
	switch {
	case numA && numB:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case numA != numB:
		return numA
	default:
		return a < b
	}
}

func numericKey(k string) (float64, bool) {
	f, err := strconv.ParseFloat(k, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// nLargest keeps the n largest groups. Ties keep their incoming (key) order.
func nLargest(groups []group, n int) []group {
	if n <= 0 {
		return nil
	}
	sorted := make([]group, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].sum.GreaterThan(sorted[j].sum) })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func toPoints(groups []group) []Point {
	points := make([]Point, len(groups))
	for i, g := range groups {
		points[i] = Point{Key: g.key, Value: g.sum.InexactFloat64()}
	}
	return points
}

func byItem(r dataset.Record) string { return r.ItemID }
func byCustomer(r dataset.Record) string { return r.CustomerID }
func byMonth(r dataset.Record) string { return r.Month.String() }
func totalPrice(r dataset.Record) decimal.Decimal { return r.TotalPrice }
func qtyReturned(r dataset.Record) decimal.Decimal { return r.QtyReturned }

func topProducts(t *dataset.Table, n int) *Result {
	return &Result{
		KeyLabel:   dataset.ColumnItemID,
		ValueLabel: dataset.ColumnTotalPrice,
		Points:     toPoints(nLargest(sumBy(t, byItem, totalPrice), n)),
	}
}

// Month keys are YYYY-MM, so ascending key order is chronological.
func monthlySales(t *dataset.Table, _ int) *Result {
	return &Result{
		KeyLabel:   dataset.ColumnMonth,
		ValueLabel: dataset.ColumnTotalPrice,
		Points:     toPoints(sumBy(t, byMonth, totalPrice)),
	}
}

func topCustomersByReturns(t *dataset.Table, n int) *Result {
	return &Result{
		KeyLabel:   dataset.ColumnCustomerID,
		ValueLabel: dataset.ColumnQtyReturned,
		Points:     toPoints(nLargest(sumBy(t, byCustomer, qtyReturned), n)),
	}
}

func topCustomersBySales(t *dataset.Table, n int) *Result {
	return &Result{
		KeyLabel:   dataset.ColumnCustomerID,
		ValueLabel: dataset.ColumnTotalPrice,
		Points:     toPoints(nLargest(sumBy(t, byCustomer, totalPrice), n)),
	}
}

func shippedVsReturned(t *dataset.Table, _ int) *Result {
	shipped, returned := decimal.Zero, decimal.Zero
	t.Each(func(r dataset.Record) {
		shipped = shipped.Add(r.QtyShipped)
		returned = returned.Add(r.QtyReturned)
	})
	return &Result{
		KeyLabel:   "Category",
		ValueLabel: "Quantity",
		Points: []Point{
			{Key: dataset.ColumnQtyShipped, Value: shipped.InexactFloat64()},
			{Key: dataset.ColumnQtyReturned, Value: returned.InexactFloat64()},
		},
	}
}
