// Package intents maps free-text sales questions onto a fixed set of aggregations.
//
// A question is lowercased and checked against an ordered list of keyword rules; the
// first rule that matches decides the intent, the aggregation run over the dataset
// and the chart used to present it. Questions matching no rule are Unrecognized,
// which is an outcome rather than an error.
package intents

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Intent identifies one of the supported question categories.
type Intent string

const (
	TopProducts           Intent = "top_products"
	MonthlySales          Intent = "monthly_sales"
	TopCustomersByReturns Intent = "top_customers_by_returns"
	TopCustomersBySales   Intent = "top_customers_by_sales"
	ShippedVsReturned     Intent = "shipped_vs_returned"
	Unrecognized          Intent = "unrecognized"
)

// MessageUnrecognized is shown when a question matches no intent.
const MessageUnrecognized = "I couldn't understand your question. Please try rephrasing it."

// Examples are the questions offered to users as a starting point.
var Examples = []string{
	"What are the top 10 selling products?",
	"Show me monthly sales trends",
	"Who are the top 5 customers?",
	"Compare shipped vs returned quantities",
	"Show me top 5 customers with most returns",
}

var titleCaser = cases.Title(language.English)

// All returns the recognized intents in classification order.
func All() []Intent {
	return []Intent{TopProducts, MonthlySales, TopCustomersByReturns, TopCustomersBySales, ShippedVsReturned}
}

// Valid reports whether i is a known intent, Unrecognized included.
func (i Intent) Valid() bool {
	if i == Unrecognized {
		return true
	}
	for _, known := range All() {
		if i == known {
			return true
		}
	}
	return false
}

// Label returns a display name such as "Top Customers By Sales".
func (i Intent) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(i), "_", " "))
}
