package provider

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ValueAt walks nested provider payload maps along path
func ValueAt(data map[string]any, path ...string) (any, bool) {
	var current any = data
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

// StringAt returns the value at path rendered as a string. Numbers keep
// their decoded representation.
func StringAt(data map[string]any, path ...string) (string, bool) {
	value, ok := ValueAt(data, path...)
	if !ok {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// DecimalAt returns the numeric value at path. ok is false when the path is
// absent; err is set when a value is present but not a number.
func DecimalAt(data map[string]any, path ...string) (amount decimal.Decimal, ok bool, err error) {
	value, ok := ValueAt(data, path...)
	if !ok {
		return decimal.Zero, false, nil
	}

	switch v := value.(type) {
	case json.Number:
		amount, err = decimal.NewFromString(v.String())
	case string:
		amount, err = decimal.NewFromString(v)
	case float64:
		amount = decimal.NewFromFloat(v)
	default:
		err = fmt.Errorf("unexpected %T", value)
	}
	if err != nil {
		return decimal.Zero, true, fmt.Errorf("invalid number at %v: %w", path, err)
	}
	return amount, true, nil
}

// Int64At returns the integer value at path with the same contract as DecimalAt
func Int64At(data map[string]any, path ...string) (int64, bool, error) {
	amount, ok, err := DecimalAt(data, path...)
	if !ok || err != nil {
		return 0, ok, err
	}
	if !amount.Equal(amount.Truncate(0)) {
		return 0, true, fmt.Errorf("invalid integer at %v: %s", path, amount)
	}
	return amount.IntPart(), true, nil
}

// Prefix returns at most the first n characters of s
func Prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
