package domain

import (
	"errors"
	"fmt"
)

var (
	ErrStockQueryFailed   = errors.New("stock query failed")
	ErrCatalogQueryFailed = errors.New("catalog query failed")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductNotInCart   = errors.New("product not in cart")
	ErrCatalogLoadFailed  = errors.New("catalog load failed")
)

type Op string

const (
	OpAdd          Op = "add"
	OpRemove       Op = "remove"
	OpUpdateAmount Op = "update_amount"
	OpListProducts Op = "list_products"
)

// OpError reports a rejected cart operation. Kind is one of the sentinel
// errors above, Err the underlying cause if any.
type OpError struct {
	Op        Op
	ProductID int64
	Kind      error
	Err       error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s product[%d]: %v: %v", e.Op, e.ProductID, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s product[%d]: %v", e.Op, e.ProductID, e.Kind)
}

func (e *OpError) Is(target error) bool {
	return target == e.Kind
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func AsOpError(err error) (*OpError, bool) {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr, true
	}
	return nil, false
}
