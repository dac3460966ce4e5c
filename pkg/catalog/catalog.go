// Package catalog describes the shape of the upstream Star Wars catalog:
// the routable resource types, the fixed set of reference fields, and how a
// decoded JSON field is classified.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Entity is a decoded upstream object. Values are whatever encoding/json
// produces for an untyped target: string, float64, bool, nil, []any or
// map[string]any.
type Entity = map[string]any

// Resource types served by the gateway.
const (
	People    = "people"
	Films     = "films"
	Planets   = "planets"
	Starships = "starships"
	Vehicles  = "vehicles"
)

// Resources lists the resource types the gateway routes, in display order.
var Resources = []string{People, Films, Planets, Starships, Vehicles}

// IsResource reports whether name is a routable resource type.
func IsResource(name string) bool {
	for _, r := range Resources {
		if r == name {
			return true
		}
	}
	return false
}

// referenceFields is the closed set of fields whose values point at other
// catalog entities. Anything else is passed through untouched.
var referenceFields = map[string]struct{}{
	"homeworld":  {},
	"films":      {},
	"species":    {},
	"vehicles":   {},
	"starships":  {},
	"characters": {},
	"planets":    {},
	"people":     {},
	"residents":  {},
	"pilots":     {},
}

// IsReferenceField reports whether field holds a reference or list of references.
func IsReferenceField(field string) bool {
	_, ok := referenceFields[field]
	return ok
}

// FieldKind classifies a single entity field.
type FieldKind int

const (
	// Scalar is a non-reference string, number, bool or null.
	Scalar FieldKind = iota
	// Reference is a known reference field holding a single URL string.
	Reference
	// ReferenceList is a known reference field holding a list.
	ReferenceList
	// Passthrough is any other structured value (objects, lists in
	// non-reference fields, or reference fields with unexpected shapes).
	Passthrough
)

func (k FieldKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Reference:
		return "reference"
	case ReferenceList:
		return "reference_list"
	default:
		return "passthrough"
	}
}

// Classify returns the kind of the field named name holding value.
func Classify(name string, value any) FieldKind {
	if IsReferenceField(name) {
		switch value.(type) {
		case string:
			return Reference
		case []any:
			return ReferenceList
		}
		return Passthrough
	}

	switch value.(type) {
	case nil, string, float64, bool:
		return Scalar
	default:
		return Passthrough
	}
}

// NameField returns the sibling field that carries the resolved name(s) for
// a reference field of the given kind.
func NameField(field string, kind FieldKind) string {
	if kind == ReferenceList {
		return field + "_names"
	}
	return field + "_name"
}

// LinkField returns the field of a related entity of type related that lists
// references to entities of type target. Films list people as "characters";
// every other resource names the field after the target type.
func LinkField(target, related string) string {
	if related == Films {
		return "characters"
	}
	return target
}

// TrailingID returns the last path segment of a reference URL,
// e.g. "https://swapi.dev/api/people/1/" -> "1".
func TrailingID(ref string) string {
	trimmed := strings.Trim(ref, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// RefType returns the resource type segment of a reference URL,
// e.g. "https://swapi.dev/api/people/1/" -> "people".
func RefType(ref string) string {
	parts := strings.Split(strings.Trim(ref, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

// IsNumericID reports whether s is a non-empty run of ASCII digits.
func IsNumericID(s string) bool {
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

// ErrInvalidRef is returned by ParseRef for malformed related references.
var ErrInvalidRef = errors.New("invalid related reference")

// Ref points at a single catalog entity by type and id, e.g. films/1.
type Ref struct {
	Type string
	ID   string
}

func (r Ref) String() string {
	return r.Type + "/" + r.ID
}

// ParseRef parses "{type}/{id}". Surrounding slashes are ignored.
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, fmt.Errorf("%w: %q (want {type}/{id})", ErrInvalidRef, s)
	}
	return Ref{Type: parts[0], ID: parts[1]}, nil
}
