// Package fd implements attribute closure, key enumeration and the 2NF, 3NF
// and BCNF predicates over a relation and its functional dependencies.
//
// All sets are immutable values. A relation and its dependencies are built
// once, handed to the functions in this package and discarded; nothing is
// cached between calls.
package fd

import (
	"encoding/json"
	"slices"
	"strings"
)

// Attribute is the name of a column of a relation.
type Attribute string

// AttrSet is an immutable set of attributes.
// The members are kept sorted and unique, so two equal sets have equal slices.
// The zero value is the empty set.
type AttrSet struct {
	attrs []Attribute
}

// NewAttrSet builds a set from the given attributes, dropping duplicates.
func NewAttrSet(attrs ...Attribute) AttrSet {
	if len(attrs) == 0 {
		return AttrSet{}
	}

	s := slices.Clone(attrs)
	slices.Sort(s)

	return AttrSet{attrs: slices.Compact(s)}
}

// Attrs builds a set from plain strings.
func Attrs(names ...string) AttrSet {
	attrs := make([]Attribute, len(names))
	for i, n := range names {
		attrs[i] = Attribute(n)
	}

	return NewAttrSet(attrs...)
}

// Len returns the number of attributes in the set.
func (s AttrSet) Len() int { return len(s.attrs) }

// Empty reports whether the set has no members.
func (s AttrSet) Empty() bool { return len(s.attrs) == 0 }

// Slice returns the members in sorted order. The caller may modify the result.
func (s AttrSet) Slice() []Attribute { return slices.Clone(s.attrs) }

// Contains reports whether a is a member of s.
func (s AttrSet) Contains(a Attribute) bool {
	_, ok := slices.BinarySearch(s.attrs, a)
	return ok
}

// SubsetOf reports whether every member of s is a member of t.
func (s AttrSet) SubsetOf(t AttrSet) bool {
	if len(s.attrs) > len(t.attrs) {
		return false
	}

	j := 0
	for _, a := range s.attrs {
		for j < len(t.attrs) && t.attrs[j] < a {
			j++
		}

		if j == len(t.attrs) || t.attrs[j] != a {
			return false
		}

		j++
	}

	return true
}

// Equal reports whether s and t have the same members.
func (s AttrSet) Equal(t AttrSet) bool {
	return slices.Equal(s.attrs, t.attrs)
}

// Intersects reports whether s and t share at least one member.
func (s AttrSet) Intersects(t AttrSet) bool {
	i, j := 0, 0
	for i < len(s.attrs) && j < len(t.attrs) {
		switch {
		case s.attrs[i] == t.attrs[j]:
			return true
		case s.attrs[i] < t.attrs[j]:
			i++
		default:
			j++
		}
	}

	return false
}

// Union returns s ∪ t.
func (s AttrSet) Union(t AttrSet) AttrSet {
	switch {
	case t.Empty():
		return s
	case s.Empty():
		return t
	}

	out := make([]Attribute, 0, len(s.attrs)+len(t.attrs))
	i, j := 0, 0

	for i < len(s.attrs) && j < len(t.attrs) {
		switch {
		case s.attrs[i] == t.attrs[j]:
			out = append(out, s.attrs[i])
			i++
			j++
		case s.attrs[i] < t.attrs[j]:
			out = append(out, s.attrs[i])
			i++
		default:
			out = append(out, t.attrs[j])
			j++
		}
	}

	out = append(out, s.attrs[i:]...)
	out = append(out, t.attrs[j:]...)

	return AttrSet{attrs: out}
}

// Intersect returns s ∩ t.
func (s AttrSet) Intersect(t AttrSet) AttrSet {
	var out []Attribute

	for _, a := range s.attrs {
		if t.Contains(a) {
			out = append(out, a)
		}
	}

	return AttrSet{attrs: out}
}

// Minus returns the members of s that are not in t.
func (s AttrSet) Minus(t AttrSet) AttrSet {
	var out []Attribute

	for _, a := range s.attrs {
		if !t.Contains(a) {
			out = append(out, a)
		}
	}

	return AttrSet{attrs: out}
}

// Compare orders sets by size and then lexicographically by member.
// Candidate keys and superkeys are returned in this order.
func (s AttrSet) Compare(t AttrSet) int {
	if len(s.attrs) != len(t.attrs) {
		return len(s.attrs) - len(t.attrs)
	}

	return slices.Compare(s.attrs, t.attrs)
}

// Strings returns the members as plain strings, in sorted order.
func (s AttrSet) Strings() []string {
	out := make([]string, len(s.attrs))
	for i, a := range s.attrs {
		out[i] = string(a)
	}

	return out
}

// String renders the set as "{A, B, C}".
func (s AttrSet) String() string {
	return "{" + strings.Join(s.Strings(), ", ") + "}"
}

// MarshalJSON encodes the set as a JSON array of attribute names.
func (s AttrSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// MarshalYAML encodes the set as a YAML sequence of attribute names.
func (s AttrSet) MarshalYAML() (any, error) {
	return s.Strings(), nil
}
