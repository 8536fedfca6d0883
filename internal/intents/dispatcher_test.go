package intents_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesbi/internal/dataset"
	"salesbi/internal/intents"
	"salesbi/internal/testsupport"
)

func TestDispatchScenarios(t *testing.T) {
	table := testsupport.SampleTable()

	tests := []struct {
		name       string
		query      string
		wantIntent intents.Intent
		wantN      int
		wantKeys   []string
		wantValues []float64
		wantTitle  string
	}{
		{
			name:       "top 5 selling products",
			query:      "top 5 selling products",
			wantIntent: intents.TopProducts,
			wantN:      5,
			wantKeys:   []string{"I-104", "I-101", "I-102", "I-103", "I-105"},
			wantValues: []float64{800, 750, 500, 225, 120},
			wantTitle:  "Top 5 Selling Products",
		},
		{
			name:       "monthly sales trends",
			query:      "show monthly sales trends",
			wantIntent: intents.MonthlySales,
			wantKeys:   []string{"2024-01", "2024-02", "2024-03"},
			wantValues: []float64{950, 1170, 425},
			wantTitle:  "Monthly Sales Trends",
		},
		{
			name:       "customers with most returns",
			query:      "top 3 customers with most returns",
			wantIntent: intents.TopCustomersByReturns,
			wantN:      3,
			wantKeys:   []string{"C-3", "C-4", "C-1"},
			wantValues: []float64{3, 3, 1},
			wantTitle:  "Top 3 Customers by Returns",
		},
		{
			name:       "top customers without digits",
			query:      "who are the top customers",
			wantIntent: intents.TopCustomersBySales,
			wantN:      5,
			wantKeys:   []string{"C-4", "C-1", "C-2", "C-3", "C-5"},
			wantValues: []float64{800, 700, 550, 225, 120},
			wantTitle:  "Top 5 Customers by Sales",
		},
		{
			name:       "shipped vs returned",
			query:      "compare shipped vs returned",
			wantIntent: intents.ShippedVsReturned,
			wantKeys:   []string{"Qty Shipped", "Qty Returned"},
			wantValues: []float64{40, 8},
			wantTitle:  "Shipped vs Returned Quantities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := intents.ClassifyAndAggregate(tt.query, table)

			assert.True(t, out.Recognized())
			assert.Equal(t, tt.wantIntent, out.Intent)
			assert.Equal(t, tt.wantN, out.N)
			require.NotNil(t, out.Chart)
			require.NotNil(t, out.Result)
			assert.Equal(t, tt.wantTitle, out.Chart.Title)
			assert.Equal(t, tt.wantKeys, out.Result.Keys())
			assert.Equal(t, tt.wantValues, out.Result.Values())
		})
	}
}

func TestDispatchUnrecognized(t *testing.T) {
	table := testsupport.SampleTable()

	for _, q := range []string{"what is the weather", "hello world", "", "fresh produce on top"} {
		t.Run(q, func(t *testing.T) {
			out := intents.ClassifyAndAggregate(q, table)
			assert.Equal(t, intents.Unrecognized, out.Intent)
			assert.False(t, out.Recognized())
			assert.Nil(t, out.Chart)
			assert.Nil(t, out.Result)
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	d := intents.NewDispatcher()

	tests := []struct {
		query string
		want  intents.Intent
	}{
		{"top products by customer returns", intents.TopProducts},
		{"monthly sales for each customer", intents.MonthlySales},
		{"customer returns", intents.TopCustomersByReturns},
		{"customers who returned the most", intents.TopCustomersByReturns},
		{"best customers", intents.TopCustomersBySales},
		{"how much did we ship", intents.ShippedVsReturned},
		{"total returns", intents.ShippedVsReturned},
		{"monthly trend", intents.Unrecognized},
		{"sales", intents.Unrecognized},
		{"TOP PRODUCTS", intents.TopProducts},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Classify(tt.query).Intent)
		})
	}
}

func TestReturnsNeverClassifiedAsSales(t *testing.T) {
	d := intents.NewDispatcher()
	for _, q := range []string{
		"customer return",
		"top 3 customers with most returns",
		"which customers have returns",
		"Customers RETURNING goods",
	} {
		assert.Equal(t, intents.TopCustomersByReturns, d.Classify(q).Intent, q)
	}
}

func TestTopProductsN(t *testing.T) {
	d := intents.NewDispatcher()

	tests := []struct {
		query string
		want  int
	}{
		{"top products", 10},
		{"top 7 products", 7},
		{"top 1 and 0 products", 10},
		{"top 2 products of 2023", 22023},
		{"top 0 products", 0},
		{"top ٣ products", 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := d.Classify(tt.query)
			assert.Equal(t, intents.TopProducts, c.Intent)
			assert.Equal(t, tt.want, c.N)
		})
	}
}

func TestFirstNumberMode(t *testing.T) {
	d := intents.NewDispatcher(intents.WithTopNMode(intents.FirstNumber))
	assert.Equal(t, intents.FirstNumber, d.Mode())

	assert.Equal(t, 1, d.Classify("top 1 and 0 products").N)
	assert.Equal(t, 2, d.Classify("top 2 products of 2023").N)
	assert.Equal(t, 10, d.Classify("top products").N)
	assert.Equal(t, 5, d.Classify("best customers").N)
}

func TestTopZeroYieldsEmptyResult(t *testing.T) {
	out := intents.ClassifyAndAggregate("top 0 products", testsupport.SampleTable())
	require.NotNil(t, out.Result)
	assert.Equal(t, 0, out.Result.Len())
	assert.NotNil(t, out.Result.Points)
}

func TestTopNLargerThanGroups(t *testing.T) {
	out := intents.ClassifyAndAggregate("top 50 products", testsupport.SampleTable())
	assert.Equal(t, 50, out.N)
	assert.Equal(t, 7, out.Result.Len())
	assert.Equal(t, "Top 50 Selling Products", out.Chart.Title)
}

func TestTiesKeepKeyOrder(t *testing.T) {
	rows := []testsupport.SalesRow{
		{ItemID: "B", CustomerID: "c2", OrderDate: testsupport.SampleSalesRows()[0].OrderDate, TotalPrice: 10},
		{ItemID: "A", CustomerID: "c1", OrderDate: testsupport.SampleSalesRows()[0].OrderDate, TotalPrice: 10},
		{ItemID: "10", CustomerID: "c3", OrderDate: testsupport.SampleSalesRows()[0].OrderDate, TotalPrice: 10},
		{ItemID: "9", CustomerID: "c4", OrderDate: testsupport.SampleSalesRows()[0].OrderDate, TotalPrice: 10},
	}
	out := intents.ClassifyAndAggregate("top 3 products", testsupport.NewTable(rows))
	assert.Equal(t, []string{"9", "10", "A"}, out.Result.Keys())
}

func TestTiesWithMixedKeysIgnoreRowOrder(t *testing.T) {
	date := testsupport.SampleSalesRows()[0].OrderDate
	row := func(item string) testsupport.SalesRow {
		return testsupport.SalesRow{ItemID: item, CustomerID: "c1", OrderDate: date, TotalPrice: 10}
	}

	for _, order := range [][]string{
		{"9", "10", "1a"},
		{"1a", "10", "9"},
		{"10", "1a", "9"},
		{"1a", "9", "10"},
	} {
		rows := make([]testsupport.SalesRow, 0, len(order))
		for _, item := range order {
			rows = append(rows, row(item))
		}
		out := intents.ClassifyAndAggregate("top products", testsupport.NewTable(rows))
		assert.Equal(t, []string{"9", "10", "1a"}, out.Result.Keys(), "row order %v", order)
	}
}

func TestBlankKeysAreNotGrouped(t *testing.T) {
	date := testsupport.SampleSalesRows()[0].OrderDate
	rows := []testsupport.SalesRow{
		{ItemID: "", CustomerID: "", OrderDate: date, TotalPrice: 1000, QtyShipped: 3, QtyReturned: 9},
		{ItemID: "I-1", CustomerID: "C-1", OrderDate: date, TotalPrice: 10, QtyShipped: 1, QtyReturned: 1},
	}
	table := testsupport.NewTable(rows)

	assert.Equal(t, []string{"I-1"}, intents.ClassifyAndAggregate("top products", table).Result.Keys())
	assert.Equal(t, []string{"C-1"}, intents.ClassifyAndAggregate("top customers", table).Result.Keys())
	assert.Equal(t, []string{"C-1"}, intents.ClassifyAndAggregate("customers with returns", table).Result.Keys())

	// Totals still count every row.
	shipped := intents.ClassifyAndAggregate("shipped vs returned", table).Result
	assert.Equal(t, []float64{4, 10}, shipped.Values())
	assert.Equal(t, 1010.0, intents.ClassifyAndAggregate("monthly sales", table).Result.Values()[0])
}

func TestMonthlySalesMatchesDistinctMonths(t *testing.T) {
	table := testsupport.SampleTable()
	out := intents.ClassifyAndAggregate("monthly sales", table)

	months := table.Months()
	require.Equal(t, len(months), out.Result.Len())
	for i, m := range months {
		assert.Equal(t, m.String(), out.Result.Points[i].Key)
	}
}

func TestMonthlySalesAcrossYears(t *testing.T) {
	base := testsupport.SampleSalesRows()
	rows := []testsupport.SalesRow{base[9], base[0]}
	rows[0].OrderDate = rows[0].OrderDate.AddDate(1, 0, 0)
	rows[1].OrderDate = rows[1].OrderDate.AddDate(0, 11, 0)

	out := intents.ClassifyAndAggregate("monthly sales", testsupport.NewTable(rows))
	assert.Equal(t, []string{"2024-12", "2025-03"}, out.Result.Keys())
}

func TestShippedVsReturnedOnEmptyTable(t *testing.T) {
	for _, table := range []*dataset.Table{dataset.NewTable("empty", nil), nil} {
		out := intents.ClassifyAndAggregate("shipped vs returned", table)
		require.Equal(t, 2, out.Result.Len())
		assert.Equal(t, []float64{0, 0}, out.Result.Values())
	}
}

func TestChartMetadata(t *testing.T) {
	table := testsupport.SampleTable()

	tests := []struct {
		query string
		want  intents.ChartSpec
	}{
		{"top 4 products", intents.ChartSpec{Kind: intents.ChartBar, Title: "Top 4 Selling Products", XLabel: "Item ID", YLabel: "Total Revenue", Color: "blue"}},
		{"monthly sales", intents.ChartSpec{Kind: intents.ChartLine, Title: "Monthly Sales Trends", XLabel: "Month", YLabel: "Total Sales", Color: "green", Markers: true, XTickRotation: 45}},
		{"customer returns", intents.ChartSpec{Kind: intents.ChartBar, Title: "Top 5 Customers by Returns", XLabel: "Customer ID", YLabel: "Quantity Returned", Color: "red"}},
		{"customers", intents.ChartSpec{Kind: intents.ChartBar, Title: "Top 5 Customers by Sales", XLabel: "Customer ID", YLabel: "Total Sales", Color: "green"}},
		{"shipping", intents.ChartSpec{Kind: intents.ChartBar, Title: "Shipped vs Returned Quantities", XLabel: "Category", YLabel: "Quantity (Log Scale)", Color: "blue", LogScale: true, Annotate: true}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			out := intents.ClassifyAndAggregate(tt.query, table)
			require.NotNil(t, out.Chart)
			assert.Equal(t, tt.want, *out.Chart)
		})
	}
}

func TestEachDispatchGetsOwnResult(t *testing.T) {
	table := testsupport.SampleTable()
	first := intents.ClassifyAndAggregate("top 5 products", table)
	first.Result.Points[0].Value = -1

	second := intents.ClassifyAndAggregate("top 5 products", table)
	assert.Equal(t, float64(800), second.Result.Points[0].Value)
}

func TestCustomKeywords(t *testing.T) {
	kw, err := intents.ParseKeywords([]byte(`
classes:
  top: [top, best]
  product: [product, item]
  monthly: [monthly, per month]
  sales: [sales, revenue]
  customer: [customer, client]
  return: [return, refund]
  ship: [ship, deliver]
`))
	require.NoError(t, err)

	d := intents.NewDispatcher(intents.WithKeywords(kw))
	assert.Equal(t, intents.TopProducts, d.Classify("Best items").Intent)
	assert.Equal(t, intents.MonthlySales, d.Classify("revenue per month").Intent)
	assert.Equal(t, intents.TopCustomersByReturns, d.Classify("clients with refunds").Intent)
	assert.Equal(t, intents.ShippedVsReturned, d.Classify("delivered goods").Intent)
}
