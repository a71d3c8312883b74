package listings

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseQuantity normalizes a raw listing quantity cell into an integer.
// Accepts plain integers, comma-grouped numbers ("1,000"), and suffixed
// shorthand ("5K", "2.5M"). Trailing annotations after the number are
// ignored the way the marketplace renders them ("500 pcs").
func ParseQuantity(raw string) (int, error) {
	text := strings.ToUpper(strings.TrimSpace(raw))
	if text == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	text = strings.ReplaceAll(text, ",", "")

	// cut anything after the numeric token
	end := 0
	seenDigit := false
	for i, r := range text {
		if r >= '0' && r <= '9' {
			seenDigit = true
			end = i + 1
			continue
		}
		if r == '.' && seenDigit {
			end = i + 1
			continue
		}
		break
	}
	if !seenDigit {
		return 0, fmt.Errorf("no digits in quantity %q", raw)
	}

	number := text[:end]
	rest := strings.TrimSpace(text[end:])

	multiplier := 1.0
	if strings.HasPrefix(rest, "K") {
		multiplier = 1_000
	} else if strings.HasPrefix(rest, "M") {
		multiplier = 1_000_000
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing quantity %q: %w", raw, err)
	}
	qty := int(value * multiplier)
	if qty < 0 {
		return 0, fmt.Errorf("negative quantity %q", raw)
	}
	return qty, nil
}
