package model

// DashboardStats aggregates the headline numbers of every screen.
type DashboardStats struct {
	Products     ProductStats     `json:"products"`
	Orders       OrderStats       `json:"orders"`
	Customers    map[string]int   `json:"customers"`
	Users        int              `json:"users"`
	Transactions TransactionStats `json:"transactions"`
}

// DailySales is the order volume of one day.
type DailySales struct {
	Date        string `json:"date"`
	Orders      int    `json:"orders"`
	AmountCents int64  `json:"amount_cents"`
}

// ProductSales counts orders per product name.
type ProductSales struct {
	Name   string `json:"name"`
	Orders int    `json:"orders"`
}

// LabelCount is a named count used for distributions.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SalesReport is the analytics summary for a date range.
type SalesReport struct {
	From                 string         `json:"from,omitempty"`
	To                   string         `json:"to,omitempty"`
	RevenueCents         int64          `json:"revenue_cents"`
	Orders               int            `json:"orders"`
	Sales                []DailySales   `json:"sales"`
	TopProducts          []ProductSales `json:"top_products"`
	CustomerDistribution []LabelCount   `json:"customer_distribution"`
}
