// Package product resolves the dimension-table surrogate key referenced by
// every fact row, caching lookups for the lifetime of one run.
package product

import (
	"fmt"
	"strings"
	"sync"

	"github.com/guttosm/tickvault/internal/domain/models"
)

// DefaultExchange is the venue the archives are collected from.
const DefaultExchange = "Coinbase Pro"

// displayNames relates a product symbol to its full name. Symbols outside
// the map fall back to the symbol itself.
var displayNames = map[string]string{
	"BTC":  "Bitcoin",
	"ETH":  "Ethereum",
	"LTC":  "Litecoin",
	"XLM":  "Stellar",
	"OMG":  "OMG Network",
	"DASH": "Dash",
	"EOS":  "EOS",
}

// DisplayName returns the full name for a symbol, or the symbol itself when
// unknown.
func DisplayName(symbol string) string {
	if name, ok := displayNames[symbol]; ok {
		return name
	}
	return symbol
}

// ParsePair splits a table name like "BTC_USD" into (symbol, currency).
func ParsePair(table string) (symbol, currency string, err error) {
	parts := strings.Split(table, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed instrument pair %q", table)
	}
	return parts[0], parts[1], nil
}

// Store is the subset of the repository the resolver needs.
type Store interface {
	UpsertProduct(p models.Product) error
	GetProductID(symbol, currency, exchange string) (int64, error)
}

type key struct {
	symbol   string
	currency string
	exchange string
}

// Resolver upserts and caches product ids. The cache is read-through: a miss
// costs one upsert and one lookup, a stale entry at worst one extra lookup.
// Safe for concurrent use across files.
type Resolver struct {
	store Store

	mu    sync.Mutex
	cache map[key]int64
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, cache: make(map[key]int64)}
}

// Resolve returns the surrogate id for (symbol, currency, exchange),
// inserting the product row on first encounter. The insert is idempotent
// under the store's uniqueness constraint. A returned id of 0 means the
// key could not be found even after the upsert; callers must not emit fact
// rows referencing it.
func (r *Resolver) Resolve(symbol, currency, exchange string) (int64, error) {
	k := key{symbol: symbol, currency: currency, exchange: exchange}

	r.mu.Lock()
	id, ok := r.cache[k]
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	p := models.Product{
		Symbol:   symbol,
		Currency: currency,
		Name:     DisplayName(symbol),
		Exchange: exchange,
	}
	if err := r.store.UpsertProduct(p); err != nil {
		return 0, fmt.Errorf("upsert product %s/%s: %w", symbol, currency, err)
	}

	id, err := r.store.GetProductID(symbol, currency, exchange)
	if err != nil {
		return 0, fmt.Errorf("lookup product %s/%s: %w", symbol, currency, err)
	}
	if id != 0 {
		r.mu.Lock()
		r.cache[k] = id
		r.mu.Unlock()
	}
	return id, nil
}
