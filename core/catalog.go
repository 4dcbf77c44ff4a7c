package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpsertProduct adds a product to the catalog or, if the code is already
// live, replaces its starting price. Owner only, and only before bidding has
// ever opened.
func (e *Engine) UpsertProduct(caller uuid.UUID, code int64, startingPrice decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if code <= 0 {
		return errf(KindBadProductCode, "product code must be positive, got %d", code)
	}
	if e.clock.opened() {
		return errf(KindAuctionStarted, "catalog is frozen once bidding opens")
	}
	if _, ok := e.products[code]; ok {
		e.products[code] = Product{Code: code, StartingPrice: startingPrice}
		return nil
	}
	if len(e.productCodes) >= e.maxProducts {
		return errf(KindTooManyProducts, "catalog is at its cap of %d products", e.maxProducts)
	}
	e.products[code] = Product{Code: code, StartingPrice: startingPrice}
	e.productCodes = append(e.productCodes, code)
	return nil
}

// RemoveProduct deletes a live product. Owner only, pre-open only. The code is
// removed from the enumeration sequence by swapping it with the last element
// and truncating, so the sequence always holds exactly the live codes.
func (e *Engine) RemoveProduct(caller uuid.UUID, code int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if code <= 0 {
		return errf(KindBadProductCode, "product code must be positive, got %d", code)
	}
	if e.clock.opened() {
		return errf(KindAuctionStarted, "catalog is frozen once bidding opens")
	}
	if _, ok := e.products[code]; !ok {
		return errf(KindProductNotFound, "no product with code %d", code)
	}
	delete(e.products, code)
	for i, c := range e.productCodes {
		if c == code {
			last := len(e.productCodes) - 1
			e.productCodes[i] = e.productCodes[last]
			e.productCodes = e.productCodes[:last]
			break
		}
	}
	return nil
}

// Product returns the catalog entry for code, if live.
func (e *Engine) Product(code int64) (Product, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.products[code]
	return p, ok
}

// ProductCodes returns the live codes in enumeration order.
func (e *Engine) ProductCodes() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int64, len(e.productCodes))
	copy(out, e.productCodes)
	return out
}
