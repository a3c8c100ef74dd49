package money

import (
	"math"
	"strconv"
	"strings"
)

// MinorUnits returns the number of decimal places shown for a currency.
// IDR is displayed without decimals; everything else uses two.
func MinorUnits(currency string) int {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "IDR":
		return 0
	default:
		return 2
	}
}

// Round2 rounds to two decimal places. Amounts stay in full precision while
// totals are computed and are rounded only when they cross a boundary
// (display, upstream payloads).
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Format renders an amount using the currency's minor-unit convention and
// grouping separator. IDR uses '.' for thousands, other currencies ','.
func Format(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "IDR"
	}

	decimals := MinorUnits(code)
	negative := amount < 0 || (decimals == 0 && math.Round(amount) < 0)
	abs := math.Abs(amount)

	rounded := abs
	switch decimals {
	case 0:
		rounded = math.Round(abs)
	case 2:
		rounded = Round2(abs)
	}

	text := strconv.FormatFloat(rounded, 'f', decimals, 64)
	whole := text
	frac := ""
	if idx := strings.Index(text, "."); idx >= 0 {
		whole = text[:idx]
		frac = text[idx+1:]
	}

	group := ","
	decimal := "."
	if code == "IDR" {
		group = "."
		decimal = ","
	}

	grouped := groupThousands(whole, group)
	out := grouped
	if frac != "" {
		out += decimal + frac
	}
	if negative && out != "0" {
		out = "-" + out
	}
	return code + " " + out
}

func groupThousands(digits string, separator string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(separator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
