// Package sorter orders result lists by an arbitrary entity field.
//
// Field values are compared numerically when their string form is a plain
// decimal number ("172", "1.5") and as lowercase strings otherwise. A list
// that mixes both kinds of key cannot be ordered and is left untouched.
package sorter

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Direction is the requested sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps an order query value to a Direction. Anything other
// than "desc" (case-insensitive) is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// ErrIncomparable is returned when the items cannot be ordered by the field.
var ErrIncomparable = errors.New("values are not comparable")

type key struct {
	numeric bool
	num     float64
	str     string
}

// Sort stably orders items in place by field. On error items are left in
// their original order.
func Sort(items []any, field string, dir Direction) error {
	if len(items) < 2 {
		return nil
	}

	keys := make([]key, len(items))
	for i, item := range items {
		entity, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: item %d is %T, not an entity", ErrIncomparable, i, item)
		}
		keys[i] = keyOf(entity, field)
		if keys[i].numeric != keys[0].numeric {
			return fmt.Errorf("%w: field %q mixes numeric and text values", ErrIncomparable, field)
		}
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := keys[order[a]], keys[order[b]]
		if dir == Desc {
			ka, kb = kb, ka
		}
		if ka.numeric {
			return ka.num < kb.num
		}
		return ka.str < kb.str
	})

	sorted := make([]any, len(items))
	for i, idx := range order {
		sorted[i] = items[idx]
	}
	copy(items, sorted)
	return nil
}

// keyOf computes the comparison key of one entity. A missing field sorts
// as 0.
func keyOf(entity map[string]any, field string) key {
	value, ok := entity[field]
	if !ok {
		return key{numeric: true}
	}

	s := stringForm(value)
	if isDecimal(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return key{numeric: true, num: f}
		}
	}
	return key{str: strings.ToLower(s)}
}

func stringForm(value any) string {
	switch v := value.(type) {
	case nil:
		return "none"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// isDecimal reports whether s is ASCII digits with at most one '.'
// somewhere in it.
func isDecimal(s string) bool {
	s = strings.Replace(s, ".", "", 1)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
