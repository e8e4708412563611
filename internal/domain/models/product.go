package models

// Product is one row of the product dimension table.
// (Symbol, Currency, Exchange) is unique; UniqueID is the surrogate key
// assigned by the database and referenced by every fact row.
type Product struct {
	UniqueID int64
	Symbol   string
	Currency string
	Name     string
	Exchange string
}
