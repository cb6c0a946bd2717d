package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// StoreCurrency is the currency every catalog price is quoted in.
var StoreCurrency = currency.BRL

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: StoreCurrency}
}
