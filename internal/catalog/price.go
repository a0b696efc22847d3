package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Price is a unit price. It decodes from either a JSON number or a
// currency-formatted string such as "1,250 EGP".
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*p = 0
		return nil
	}
	f, ok := Float(v)
	if !ok {
		return fmt.Errorf("price: cannot use %s", string(b))
	}
	*p = Price(f)
	return nil
}

// ParsePrice strips everything except digits and '.' and parses the rest.
// A leading minus sign is rejected rather than stripped.
func ParsePrice(s string) (float64, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		return 0, fmt.Errorf("price %q is negative", s)
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, fmt.Errorf("price %q has no digits", s)
	}
	return strconv.ParseFloat(b.String(), 64)
}

// Float coerces a loosely-typed numeric value.
func Float(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case Price:
		f = float64(n)
	case string:
		x, err := ParsePrice(n)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int coerces a loosely-typed whole number. Fractions are truncated.
func Int(v any) (int, bool) {
	if s, ok := v.(string); ok {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		return i, err == nil
	}
	f, ok := Float(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// String coerces identifiers that may arrive as numbers.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
