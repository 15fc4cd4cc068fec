package fd

// Closure returns the set of attributes functionally determined by x under deps.
//
// Every pass applies each dependency whose left side is already covered; the
// loop ends after a pass that adds nothing. The result always contains x.
func Closure(x AttrSet, deps []Dependency) AttrSet {
	result := x

	for changed := true; changed; {
		changed = false

		for _, d := range deps {
			if d.LHS.SubsetOf(result) && !d.RHS.SubsetOf(result) {
				result = result.Union(d.RHS)
				changed = true
			}
		}
	}

	return result
}

// IsSuperkey reports whether x is a subset of r whose closure covers r.
func IsSuperkey(x, r AttrSet, deps []Dependency) bool {
	return x.SubsetOf(r) && r.SubsetOf(Closure(x, deps))
}
