// Package format renders amounts and dates for people.
package format

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"kharcha/internal/core"
)

const CurrencyPrefix = "Rs. "

// Rupees renders m with grouped thousands, e.g. "Rs. 14,200" or "Rs. 1,250.50".
// Paisa are shown only when non-zero.
func Rupees(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	s := sign + CurrencyPrefix + humanize.Comma(cents/100)
	if frac := cents % 100; frac != 0 {
		s += fmt.Sprintf(".%02d", frac)
	}
	return s
}

// RupeesFloat renders a rupee value such as an average, with at most two decimals.
func RupeesFloat(v float64) string {
	s := humanize.CommafWithDigits(v, 2)
	if strings.HasPrefix(s, "-") {
		return "-" + CurrencyPrefix + s[1:]
	}
	return CurrencyPrefix + s
}

// Date renders d like "Jan 15, 2024".
func Date(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 2, 2006")
}

// Status capitalizes a status for display.
func Status(s core.Status) string {
	str := s.String()
	if str == "" {
		return ""
	}
	return strings.ToUpper(str[:1]) + str[1:]
}
