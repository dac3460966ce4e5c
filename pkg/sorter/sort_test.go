package sorter

import (
	"errors"
	"testing"
)

func entities(field string, values ...any) []any {
	items := make([]any, len(values))
	for i, v := range values {
		items[i] = map[string]any{field: v, "pos": float64(i)}
	}
	return items
}

func column(items []any, field string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.(map[string]any)[field]
	}
	return out
}

func equal(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Direction{
		"desc":  Desc,
		"DESC":  Desc,
		" Desc": Desc,
		"asc":   Asc,
		"":      Asc,
		"down":  Asc,
	}
	for in, want := range tests {
		if got := ParseDirection(in); got != want {
			t.Errorf("ParseDirection(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		items []any
		field string
		dir   Direction
		want  []any
	}{
		{
			name:  "numeric strings ascending",
			items: entities("height", "172", "96", "180"),
			field: "height",
			dir:   Asc,
			want:  []any{"96", "172", "180"},
		},
		{
			name:  "numeric strings descending",
			items: entities("height", "172", "96", "180"),
			field: "height",
			dir:   Desc,
			want:  []any{"180", "172", "96"},
		},
		{
			name:  "decimals",
			items: entities("gravity", "1.5", "0.9", "10"),
			field: "gravity",
			dir:   Asc,
			want:  []any{"0.9", "1.5", "10"},
		},
		{
			name:  "json numbers",
			items: entities("episode_id", 6.0, 4.0, 5.0),
			field: "episode_id",
			dir:   Asc,
			want:  []any{4.0, 5.0, 6.0},
		},
		{
			name:  "case-insensitive strings",
			items: entities("name", "luke", "Anakin", "ben"),
			field: "name",
			dir:   Asc,
			want:  []any{"Anakin", "ben", "luke"},
		},
		{
			name:  "unknown is text",
			items: entities("mass", "unknown", "Arid", "n/a"),
			field: "mass",
			dir:   Asc,
			want:  []any{"Arid", "n/a", "unknown"},
		},
		{
			name:  "version strings are text",
			items: entities("v", "1.2.3", "1.10.0"),
			field: "v",
			dir:   Asc,
			want:  []any{"1.10.0", "1.2.3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Sort(tt.items, tt.field, tt.dir); err != nil {
				t.Fatalf("Sort() error = %v", err)
			}
			if got := column(tt.items, tt.field); !equal(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSort_Stable(t *testing.T) {
	for _, dir := range []Direction{Asc, Desc} {
		t.Run(string(dir), func(t *testing.T) {
			items := entities("height", "172", "96", "172", "96")
			if err := Sort(items, "height", dir); err != nil {
				t.Fatalf("Sort() error = %v", err)
			}

			want := []any{1.0, 3.0, 0.0, 2.0}
			if dir == Desc {
				want = []any{0.0, 2.0, 1.0, 3.0}
			}
			if got := column(items, "pos"); !equal(got, want) {
				t.Errorf("positions = %v, want %v", got, want)
			}
		})
	}
}

func TestSort_MissingFieldIsZero(t *testing.T) {
	items := []any{
		map[string]any{"name": "a", "height": "10"},
		map[string]any{"name": "b"},
		map[string]any{"name": "c", "height": "5"},
	}
	if err := Sort(items, "height", Asc); err != nil {
		t.Fatalf("Sort() error = %v", err)
	}
	if got := column(items, "name"); !equal(got, []any{"b", "c", "a"}) {
		t.Errorf("order = %v, want [b c a]", got)
	}
}

func TestSort_IncomparableLeavesOrder(t *testing.T) {
	tests := []struct {
		name  string
		items []any
		field string
	}{
		{
			name:  "mixed numeric and text",
			items: entities("height", "172", "unknown", "96"),
			field: "height",
		},
		{
			name:  "missing field next to text",
			items: []any{map[string]any{"name": "x"}, map[string]any{"other": 1.0}},
			field: "name",
		},
		{
			name:  "non-entity item",
			items: []any{map[string]any{"name": "x"}, "stray"},
			field: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append([]any(nil), tt.items...)
			err := Sort(tt.items, tt.field, Asc)
			if !errors.Is(err, ErrIncomparable) {
				t.Fatalf("Sort() error = %v, want ErrIncomparable", err)
			}
			if got, want := len(tt.items), len(before); got != want {
				t.Fatalf("len = %d, want %d", got, want)
			}
			for i := range before {
				if !sameItem(tt.items[i], before[i]) {
					t.Errorf("item %d moved", i)
				}
			}
		})
	}
}

func sameItem(a, b any) bool {
	ma, okA := a.(map[string]any)
	mb, okB := b.(map[string]any)
	if okA != okB {
		return false
	}
	if !okA {
		return a == b
	}
	for k, v := range ma {
		if mb[k] != v {
			return false
		}
	}
	return len(ma) == len(mb)
}

func TestSort_ShortLists(t *testing.T) {
	if err := Sort(nil, "name", Asc); err != nil {
		t.Errorf("Sort(nil) error = %v", err)
	}
	single := []any{"not an entity"}
	if err := Sort(single, "name", Asc); err != nil {
		t.Errorf("Sort() of one item error = %v", err)
	}
}
