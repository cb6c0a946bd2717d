// Package view derives what the catalog and cart pages display from a cart
// snapshot. Nothing here holds state.
package view

import (
	"strings"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var storeLocale = language.BrazilianPortuguese

type Line struct {
	domain.CartItem
	PriceFormatted    string `json:"priceFormatted"`
	SubtotalFormatted string `json:"subTotal"`
}

// FormatPrice renders an amount in the store currency, e.g. "R$\u00a01.234,56".
func FormatPrice(amount decimal.Decimal) string {
	return FormatMoney(domain.NewMoney(amount))
}

// FormatMoney renders m the way pt-BR browsers do: symbol, no-break space,
// dot-grouped integer part, two decimals after a comma.
func FormatMoney(m domain.Money) string {
	p := message.NewPrinter(storeLocale)

	symbol := p.Sprint(currency.Symbol(m.Currency))
	if symbol == "" {
		symbol = m.Currency.String()
	}

	return symbol + "\u00a0" + groupDecimal(m.Amount.StringFixed(2))
}

// groupDecimal turns "-1234567.89" into "-1.234.567,89" without going
// through float64.
func groupDecimal(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

func Subtotal(item domain.CartItem) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Amount)))
}

func Lines(cart domain.Cart) []Line {
	lines := make([]Line, 0, cart.Len())
	for _, item := range cart.Items {
		lines = append(lines, Line{
			CartItem:          item,
			PriceFormatted:    FormatPrice(item.Price),
			SubtotalFormatted: FormatPrice(Subtotal(item)),
		})
	}
	return lines
}

func Total(cart domain.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(Subtotal(item))
	}
	return total
}

func TotalFormatted(cart domain.Cart) string {
	return FormatPrice(Total(cart))
}

// AmountsByProduct maps product id to the amount in the cart. Absent ids read
// as zero.
func AmountsByProduct(cart domain.Cart) map[int64]int {
	amounts := make(map[int64]int, cart.Len())
	for _, item := range cart.Items {
		amounts[item.ID] = item.Amount
	}
	return amounts
}
