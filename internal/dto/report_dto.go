package dto

import "github.com/shopspring/decimal"

// RevenueDay is one per-day bucket in the revenue summary.
type RevenueDay struct {
	Day      string          `json:"day"` // YYYY-MM-DD
	Gross    decimal.Decimal `json:"gross"`
	Refunded decimal.Decimal `json:"refunded"`
	Net      decimal.Decimal `json:"net"`
	Sales    int             `json:"sales"`
}

// RevenueSummary is the core aggregation the reporting screens consume.
type RevenueSummary struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Gross    decimal.Decimal `json:"gross"`
	Refunded decimal.Decimal `json:"refunded"`
	Net      decimal.Decimal `json:"net"`
	Sales    int             `json:"sales"`
	Refunds  int             `json:"refunds"`
	Days     []RevenueDay    `json:"days"`
}
