package fd

import "context"

// CandidateKeys returns the candidate keys of r: all subsets of the minimum
// size whose closure under deps covers r. Every subset of r is tried, so the
// cost grows as 2^|r|. Use a Checker to bound it.
//
// The result is never empty: r itself always qualifies. For an empty r the
// only key is the empty set.
func CandidateKeys(r AttrSet, deps []Dependency) []AttrSet {
	keys, _ := unbounded.CandidateKeys(context.Background(), r, deps)
	return keys
}

// SuperKeys returns every subset of r, of any size, whose closure covers r.
func SuperKeys(r AttrSet, deps []Dependency) []AttrSet {
	supers, _ := unbounded.SuperKeys(context.Background(), r, deps)
	return supers
}

// PrimeAttributes returns the union of the candidate keys of r.
func PrimeAttributes(r AttrSet, deps []Dependency) AttrSet {
	return primeOf(CandidateKeys(r, deps))
}

// NonPrimeAttributes returns the attributes of r that belong to no candidate key.
func NonPrimeAttributes(r AttrSet, deps []Dependency) AttrSet {
	return r.Minus(PrimeAttributes(r, deps))
}

func primeOf(keys []AttrSet) AttrSet {
	var prime AttrSet
	for _, k := range keys {
		prime = prime.Union(k)
	}

	return prime
}

func isCandidateKey(x AttrSet, keys []AttrSet) bool {
	for _, k := range keys {
		if k.Equal(x) {
			return true
		}
	}

	return false
}
