package transformers

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/oarkflow/convert"
	"github.com/shopspring/decimal"

	"github.com/oarkflow/productetl/pkg/utils"
)

// CleanPrice parses a possibly currency-formatted price. Text keeps only its
// digits and decimal points; text without any digit is missing. Numbers pass
// through. ok is false when a present value had to be dropped.
func CleanPrice(v any) (price *float64, ok bool) {
	if utils.IsMissing(v) {
		return nil, true
	}
	switch val := v.(type) {
	case string:
		return cleanPriceText(val)
	case []byte:
		return cleanPriceText(string(val))
	}
	return toFloat(v)
}

func cleanPriceText(s string) (*float64, bool) {
	if !strings.ContainsFunc(s, isDigit) {
		return nil, false
	}
	stripped := strings.Map(func(r rune) rune {
		if isDigit(r) || r == '.' {
			return r
		}
		return -1
	}, s)
	d, err := decimal.NewFromString(stripped)
	if err != nil {
		return nil, false
	}
	f := d.InexactFloat64()
	return &f, true
}

// CleanFloat coerces v to a float, mapping missing sentinels to nil.
func CleanFloat(v any) (*float64, bool) {
	if utils.IsMissing(v) {
		return nil, true
	}
	switch val := v.(type) {
	case string:
		return parseFloat(val)
	case []byte:
		return parseFloat(string(val))
	}
	return toFloat(v)
}

// CleanInt coerces v to an integer, tolerating thousands separators.
// Fractions are truncated toward zero.
func CleanInt(v any) (*int64, bool) {
	if utils.IsMissing(v) {
		return nil, true
	}
	switch val := v.(type) {
	case int64:
		return &val, true
	case int:
		n := int64(val)
		return &n, true
	case int32:
		n := int64(val)
		return &n, true
	case string:
		return parseInt(val)
	case []byte:
		return parseInt(string(val))
	}
	f, ok := toFloat(v)
	if f == nil {
		return nil, ok
	}
	return truncate(*f)
}

// Round1 rounds to one fractional digit, half away from zero.
func Round1(f float64) float64 {
	return decimal.NewFromFloat(f).Round(1).InexactFloat64()
}

func parseFloat(s string) (*float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}

func parseInt(s string) (*int64, bool) {
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == '_' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n, true
	}
	f, ok := parseFloat(s)
	if f == nil {
		return nil, ok
	}
	return truncate(*f)
}

// truncate drops the fraction of f. Values that do not fit in an int64 are
// dropped.
func truncate(f float64) (*int64, bool) {
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, false
	}
	n := int64(f)
	return &n, true
}

// isDigit accepts ASCII digits only; they are the only digits a price keeps.
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func toFloat(v any) (*float64, bool) {
	f, ok := convert.ToFloat64(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}
