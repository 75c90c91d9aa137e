package currency

import (
	"fmt"
	"math"
	"strings"
)

var symbols = map[string]string{
	"EUR": "€",
	"GBP": "£",
	"USD": "$",
	"PLN": "zł",
	"CZK": "Kč",
	"HUF": "Ft",
}

// Format renders an amount the way fares are shown to users: two decimals,
// a comma as decimal separator, dots between thousands and the currency
// symbol after the number ("1.234,50 €"). Unknown codes are printed as is.
func Format(amount float64, code string) string {
	cents := math.Round(amount * 100)

	negative := cents < 0
	if negative {
		cents = -cents
	}

	intPart := fmt.Sprintf("%.0f", math.Floor(cents/100))
	fracPart := fmt.Sprintf("%02.0f", math.Mod(cents, 100))

	result := addThousandsSeparator(intPart, ".") + "," + fracPart
	if negative {
		result = "-" + result
	}

	code = strings.ToUpper(code)
	if sym, ok := symbols[code]; ok {
		return result + " " + sym
	}
	if code == "" {
		return result
	}
	return result + " " + code
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
