// Package transform holds small pure helpers over slices and values.
package transform

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Flatten returns the elements of input with every nested slice expanded in
// place, at any depth. Element order is preserved. Strings and byte slices
// are treated as values, not sequences.
func Flatten(input []interface{}) []interface{} {
	out := make([]interface{}, 0, len(input))
	return flattenInto(out, input)
}

func flattenInto(out []interface{}, input []interface{}) []interface{} {
	for _, v := range input {
		out = appendFlat(out, v)
	}
	return out
}

func appendFlat(out []interface{}, v interface{}) []interface{} {
	switch val := v.(type) {
	case []interface{}:
		return flattenInto(out, val)
	case []byte:
		return append(out, val)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			out = appendFlat(out, rv.Index(i).Interface())
		}
		return out
	}
	return append(out, v)
}

// FlattenSlices concatenates one level of nesting
func FlattenSlices[T any](nested [][]T) []T {
	n := 0
	for _, s := range nested {
		n += len(s)
	}
	flattened := make([]T, 0, n)
	for _, s := range nested {
		flattened = append(flattened, s...)
	}
	return flattened
}

// Sorter orders a whole list and returns the ordered list
type Sorter[T any] func(list []T) []T

// SortList hands list to sorter and returns its result. Lists of zero or
// one element are returned as is and sorter is not called.
func SortList[T any](list []T, sorter Sorter[T]) []T {
	if len(list) <= 1 || sorter == nil {
		return list
	}
	return sorter(list)
}

// FormatCurrency renders a numeric value as dollars with two decimals, such
// as "$5.00" or "-$1,234.50". Values that are not numbers render as "$0.00".
func FormatCurrency(v interface{}) string {
	amount, ok := toFloat(v)
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0.00"
	}

	cents := math.Round(amount * 100)
	sign := ""
	if cents < 0 {
		sign = "-"
	}
	cents = math.Abs(cents)

	if math.IsInf(cents, 0) {
		// too large to carry cents; such amounts have no fractional part
		return sign + "$" + groupThousands(strconv.FormatFloat(math.Abs(amount), 'f', 0, 64)) + ".00"
	}

	digits := strconv.FormatFloat(cents, 'f', 0, 64)
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	whole, frac := digits[:len(digits)-2], digits[len(digits)-2:]

	return sign + "$" + groupThousands(whole) + "." + frac
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool, nil:
		return 0, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// groupThousands inserts commas into a string of decimal digits.
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	out = append(out, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
