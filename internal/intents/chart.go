package intents

import "fmt"

// ChartKind is the shape used to draw a result.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

// ChartSpec declares how a Result should be drawn. It carries no drawing state;
// renderers read it together with the Result.
type ChartSpec struct {
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	// Color is a CSS/SVG color name.
	Color    string `json:"color"`
	LogScale bool   `json:"log_scale"`
	Markers  bool   `json:"markers"`
	// XTickRotation is in degrees, counter-clockwise.
	XTickRotation float64 `json:"x_tick_rotation"`
	// Annotate prints each bar's value above it.
	Annotate bool `json:"annotate"`
}

func topProductsChart(n int) ChartSpec {
	return ChartSpec{
		Kind:   ChartBar,
		Title:  fmt.Sprintf("Top %d Selling Products", n),
		XLabel: "Item ID",
		YLabel: "Total Revenue",
		Color:  "blue",
	}
}

func monthlySalesChart(int) ChartSpec {
	return ChartSpec{
		Kind:          ChartLine,
		Title:         "Monthly Sales Trends",
		XLabel:        "Month",
		YLabel:        "Total Sales",
		Color:         "green",
		Markers:       true,
		XTickRotation: 45,
	}
}

func topCustomersByReturnsChart(n int) ChartSpec {
	return ChartSpec{
		Kind:   ChartBar,
		Title:  fmt.Sprintf("Top %d Customers by Returns", n),
		XLabel: "Customer ID",
		YLabel: "Quantity Returned",
		Color:  "red",
	}
}

func topCustomersBySalesChart(n int) ChartSpec {
	return ChartSpec{
		Kind:   ChartBar,
		Title:  fmt.Sprintf("Top %d Customers by Sales", n),
		XLabel: "Customer ID",
		YLabel: "Total Sales",
		Color:  "green",
	}
}

func shippedVsReturnedChart(int) ChartSpec {
	return ChartSpec{
		Kind:     ChartBar,
		Title:    "Shipped vs Returned Quantities",
		XLabel:   "Category",
		YLabel:   "Quantity (Log Scale)",
		Color:    "blue",
		LogScale: true,
		Annotate: true,
	}
}
