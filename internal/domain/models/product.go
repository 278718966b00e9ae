package models

import "github.com/shopspring/decimal"

// StockRecord is one on-hand quantity figure keyed by article number.
type StockRecord struct {
	Article  string
	Quantity int
}

// ProductRecord is a single row of the published feed. In the final record set
// the article is unique, the price already includes markup and the quantity is
// positive (zero-stock rows never reach the output).
type ProductRecord struct {
	Article      string
	Name         string
	Brand        string
	Price        decimal.Decimal
	Quantity     int
	Multiplicity int
}
