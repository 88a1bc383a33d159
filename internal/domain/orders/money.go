package orders

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount in reais. Stores send totals as strings ("29.90") or numbers.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal amount.
func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

// UnmarshalJSON accepts quoted and bare numbers; null and "" decode to zero.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.UnmarshalJSON(b)
}

// FormatBRL renders the amount as "R$ 29,90": two decimals, comma separator, no
// thousands grouping.
func (m Money) FormatBRL() string {
	return "R$ " + strings.Replace(m.StringFixed(2), ".", ",", 1)
}

// ParseMoney reads amounts written by people or automation tools: "29.9", "29,90",
// "R$ 29,90". A comma is taken as the decimal separator only when there is no dot.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

// FormatPrice formats a free-form price as BRL, returning the trimmed input unchanged
// when it is not a number. An empty input formats as zero.
func FormatPrice(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewMoney(decimal.Zero).FormatBRL()
	}
	m, err := ParseMoney(raw)
	if err != nil {
		return raw
	}
	return m.FormatBRL()
}
