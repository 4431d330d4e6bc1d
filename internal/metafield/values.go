package metafield

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseList decodes a list payload. A JSON array is used as-is; anything else
// (invalid JSON, or JSON that is not an array) is split on commas with each
// piece trimmed and empty pieces dropped. A missing or blank payload yields an
// empty, non-nil list.
func parseList(raw *string) []any {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return []any{}
	}

	if items, ok := decodeArray(*raw); ok {
		return items
	}
	return splitCSV(*raw)
}

// decodeArray decodes raw as a single JSON array. Numbers that fit a float64
// are returned as float64; out-of-range literals stay json.Number so a single
// element cannot invalidate the whole array.
func decodeArray(raw string) ([]any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	items, ok := decoded.([]any)
	if !ok {
		return nil, false
	}
	for i, item := range items {
		items[i] = plainNumbers(item)
	}
	return items, true
}

func plainNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return f
		}
		return t
	case []any:
		for i := range t {
			t[i] = plainNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = plainNumbers(t[k])
		}
		return t
	default:
		return v
	}
}

func splitCSV(raw string) []any {
	parts := strings.Split(raw, ",")
	items := make([]any, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

// coerceNumber converts v to a finite float64.
func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, isFinite(n)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		return coerceNumericString(n.String())
	case string:
		return coerceNumericString(n)
	default:
		return 0, false
	}
}

// coerceNumericString parses decimal notation ("12", "-3.50", "1e3").
// decimal checks the syntax and rejects NaN, infinities and hex floats;
// strconv converts, so the cost does not grow with the exponent. Values beyond
// the float64 range fail and values below it round to zero.
func coerceNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, isFinite(f)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// formatNumber renders the shortest decimal representation ("12", "12.5").
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// displayString renders one list element for display.
func displayString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatNumber(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
