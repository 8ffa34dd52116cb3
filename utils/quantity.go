package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatWaterQuantity renders litres as a human quantity: 1 and above as
// "1.5L", below 1 as millilitres.
func FormatWaterQuantity(quantityInLiters float64) string {
	if quantityInLiters >= 1 {
		return strconv.FormatFloat(quantityInLiters, 'f', -1, 64) + "L"
	}
	return strconv.Itoa(int(math.Round(quantityInLiters*1000))) + "ml"
}

// ParseWaterQuantity accepts "500ml", "1L", "0.5l" or a bare number and
// returns litres.
func ParseWaterQuantity(quantity string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(quantity))
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	switch {
	case strings.HasSuffix(s, "ml"):
		ml, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "ml")), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid quantity %q", quantity)
		}
		return ml / 1000, nil
	case strings.HasSuffix(s, "l"):
		l, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "l")), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid quantity %q", quantity)
		}
		return l, nil
	default:
		// No unit, assume litres.
		l, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid quantity %q", quantity)
		}
		return l, nil
	}
}
