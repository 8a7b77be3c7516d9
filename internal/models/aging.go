package models

import "github.com/shopspring/decimal"

// AgingReportItem is a derived per-customer aging row; it is computed from
// outstanding receivables and never persisted.
type AgingReportItem struct {
	CustomerID   uint            `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Current      decimal.Decimal `json:"current"`
	Days30       decimal.Decimal `json:"days_30"`
	Days60       decimal.Decimal `json:"days_60"`
	Days90       decimal.Decimal `json:"days_90"`
	Over90       decimal.Decimal `json:"over_90"`
	Total        decimal.Decimal `json:"total"`
}
