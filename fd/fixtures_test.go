package fd_test

import (
	"github.com/google/go-cmp/cmp"

	"github.com/rlch/nfcheck/fd"
)

// cmpSets compares attribute sets by membership.
var cmpSets = cmp.Comparer(func(a, b fd.AttrSet) bool { return a.Equal(b) })

func dep(lhs, rhs string) fd.Dependency {
	return fd.NewDependency(split(lhs), split(rhs))
}

func split(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}

func set(s string) fd.AttrSet {
	return fd.Attrs(split(s)...)
}

type fixture struct {
	name string
	r    fd.AttrSet
	deps []fd.Dependency
}

// fixtures are small relations used by the property tests.
var fixtures = []fixture{
	{name: "empty", r: set("")},
	{name: "no dependencies", r: set("ABC")},
	{name: "single key", r: set("ABC"), deps: []fd.Dependency{dep("A", "BC")}},
	{name: "partial", r: set("ABC"), deps: []fd.Dependency{dep("AB", "C"), dep("A", "B")}},
	{name: "transitive", r: set("ABC"), deps: []fd.Dependency{dep("A", "B"), dep("B", "C")}},
	{name: "two keys", r: set("ABC"), deps: []fd.Dependency{dep("A", "B"), dep("B", "A"), dep("A", "C")}},
	{name: "overlapping keys", r: set("ABCD"), deps: []fd.Dependency{dep("AB", "CD"), dep("C", "A")}},
	{name: "cycle", r: set("ABCD"), deps: []fd.Dependency{dep("A", "B"), dep("B", "C"), dep("C", "D"), dep("D", "A")}},
	{name: "textbook", r: set("ABCDE"), deps: []fd.Dependency{dep("AB", "C"), dep("C", "D"), dep("D", "E"), dep("A", "E")}},
	{name: "composite partial", r: set("ABCDEF"), deps: []fd.Dependency{dep("AB", "CDEF"), dep("A", "C"), dep("D", "E")}},
}

// subsets returns every subset of r.
func subsets(r fd.AttrSet) []fd.AttrSet {
	attrs := r.Slice()
	out := make([]fd.AttrSet, 0, 1<<len(attrs))

	for mask := range 1 << len(attrs) {
		var members []fd.Attribute

		for i, a := range attrs {
			if mask&(1<<i) != 0 {
				members = append(members, a)
			}
		}

		out = append(out, fd.NewAttrSet(members...))
	}

	return out
}
