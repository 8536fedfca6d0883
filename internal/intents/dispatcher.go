package intents

import (
	"strings"

	"salesbi/internal/dataset"
)

// rule pairs a keyword predicate with the aggregation and chart it selects.
// defaultN is zero for intents without a top-N bound.
type rule struct {
	intent    Intent
	match     func(q string) bool
	defaultN  int
	aggregate func(t *dataset.Table, n int) *Result
	chart     func(n int) ChartSpec
}

// Dispatcher classifies questions and runs the matching aggregation. It holds no
// mutable state and is safe for concurrent use.
type Dispatcher struct {
	keywords *Keywords
	mode     TopNMode
	rules    []rule
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTopNMode selects how top-N bounds are read from questions.
func WithTopNMode(mode TopNMode) Option {
	return func(d *Dispatcher) {
		d.mode = mode
	}
}

// WithKeywords replaces the embedded keyword table.
func WithKeywords(kw *Keywords) Option {
	return func(d *Dispatcher) {
		d.keywords = kw
	}
}

// NewDispatcher builds a dispatcher with the embedded keyword table and
// digit-concatenating top-N extraction unless options say otherwise.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		keywords: DefaultKeywords(),
		mode:     ConcatDigits,
	}
	for _, opt := range opts {
		opt(d)
	}

	kw := d.keywords
	has := func(q, class string) bool { return kw.Has(q, class) }

	// Order matters: the first matching rule wins, and the keyword sets overlap.
	d.rules = []rule{
		{
			intent:    TopProducts,
			match:     func(q string) bool { return has(q, ClassTop) && has(q, ClassProduct) },
			defaultN:  10,
			aggregate: topProducts,
			chart:     topProductsChart,
		},
		{
			intent:    MonthlySales,
			match:     func(q string) bool { return has(q, ClassMonthly) && has(q, ClassSales) },
			aggregate: monthlySales,
			chart:     monthlySalesChart,
		},
		{
			intent:    TopCustomersByReturns,
			match:     func(q string) bool { return has(q, ClassCustomer) && has(q, ClassReturn) },
			defaultN:  5,
			aggregate: topCustomersByReturns,
			chart:     topCustomersByReturnsChart,
		},
		{
			intent:    TopCustomersBySales,
			match:     func(q string) bool { return has(q, ClassCustomer) },
			defaultN:  5,
			aggregate: topCustomersBySales,
			chart:     topCustomersBySalesChart,
		},
		{
			intent:    ShippedVsReturned,
			match:     func(q string) bool { return has(q, ClassReturn) || has(q, ClassShip) },
			aggregate: shippedVsReturned,
			chart:     shippedVsReturnedChart,
		},
	}
	return d
}

// Mode returns the top-N extraction mode in use.
func (d *Dispatcher) Mode() TopNMode {
	return d.mode
}

// Classification is the intent chosen for a question and its top-N bound, which is
// zero for intents that are not bounded.
type Classification struct {
	Intent Intent `json:"intent"`
	N      int    `json:"n,omitempty"`
}

// Outcome is the full answer to a question. Chart and Result are nil when the
// intent is Unrecognized.
type Outcome struct {
	Question string     `json:"question"`
	Intent   Intent     `json:"intent"`
	N        int        `json:"n,omitempty"`
	Chart    *ChartSpec `json:"chart,omitempty"`
	Result   *Result    `json:"result,omitempty"`
}

// Recognized reports whether the question mapped onto a supported intent.
func (o Outcome) Recognized() bool {
	return o.Intent != Unrecognized && o.Result != nil
}

// Classify picks the intent for question without touching any data.
func (d *Dispatcher) Classify(question string) Classification {
	r, n := d.match(question)
	if r == nil {
		return Classification{Intent: Unrecognized}
	}
	return Classification{Intent: r.intent, N: n}
}

// Dispatch classifies question and aggregates table accordingly.
func (d *Dispatcher) Dispatch(question string, table *dataset.Table) Outcome {
	r, n := d.match(question)
	if r == nil {
		return Outcome{Question: question, Intent: Unrecognized}
	}

	chart := r.chart(n)
	return Outcome{
		Question: question,
		Intent:   r.intent,
		N:        n,
		Chart:    &chart,
		Result:   r.aggregate(table, n),
	}
}

func (d *Dispatcher) match(question string) (*rule, int) {
	q := strings.ToLower(question)
	for i := range d.rules {
		r := &d.rules[i]
		if !r.match(q) {
			continue
		}
		n := 0
		if r.defaultN > 0 {
			n = ExtractTopN(q, r.defaultN, d.mode)
		}
		return r, n
	}
	return nil, 0
}

var defaultDispatcher = NewDispatcher()

// ClassifyAndAggregate answers question against table with the default dispatcher.
func ClassifyAndAggregate(question string, table *dataset.Table) Outcome {
	return defaultDispatcher.Dispatch(question, table)
}
