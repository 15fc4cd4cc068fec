package fd

import (
	"fmt"
	"strings"
)

// NormalForm identifies a normal form. Higher values are stricter.
type NormalForm int

// Normal forms checked by this package. NF1 is assumed for every relation
// and only appears as the result of Report.Highest.
const (
	NF1 NormalForm = iota + 1
	NF2
	NF3
	BCNF
)

var normalFormNames = map[NormalForm]string{
	NF1:  "1NF",
	NF2:  "2NF",
	NF3:  "3NF",
	BCNF: "BCNF",
}

func (nf NormalForm) String() string {
	if name, ok := normalFormNames[nf]; ok {
		return name
	}

	return fmt.Sprintf("NormalForm(%d)", int(nf))
}

// MarshalText encodes the normal form by name.
func (nf NormalForm) MarshalText() ([]byte, error) {
	return []byte(nf.String()), nil
}

// ParseNormalForm parses "2NF", "3nf", "BCNF" and so on.
func ParseNormalForm(s string) (NormalForm, error) {
	for nf, name := range normalFormNames {
		if strings.EqualFold(s, name) {
			return nf, nil
		}
	}

	return 0, fmt.Errorf("fd: unknown normal form %q", s)
}

// Violation is the first dependency found to break a normal form.
type Violation struct {
	Form       NormalForm `json:"form" yaml:"form"`
	Dependency Dependency `json:"dependency" yaml:"dependency"`
	// Index is the dependency's position in declaration order.
	Index int `json:"index" yaml:"index"`
	// Attribute is the non-prime attribute on the right-hand side for 2NF
	// and 3NF. It is empty for BCNF, where the whole left side is at fault.
	Attribute Attribute `json:"attribute,omitempty" yaml:"attribute,omitempty"`
}

// Reason explains the violation in one line.
func (v *Violation) Reason() string {
	if v.Form == BCNF {
		return fmt.Sprintf("%s breaks %s requirements (%s is not a superkey)", v.Dependency, v.Form, v.Dependency.LHS)
	}

	return fmt.Sprintf("%s breaks %s requirements (%s is non-prime)", v.Dependency, v.Form, v.Attribute)
}

// Verdict is the outcome of one normal-form check.
type Verdict struct {
	Form      NormalForm `json:"form" yaml:"form"`
	Satisfied bool       `json:"satisfied" yaml:"satisfied"`
	Violation *Violation `json:"violation,omitempty" yaml:"violation,omitempty"`
}

// keyFacts is what the checks need to know about one relation.
type keyFacts struct {
	r        AttrSet
	deps     []Dependency
	keys     []AttrSet
	nonPrime AttrSet
}

func factsFor(r AttrSet, deps []Dependency, keys []AttrSet) keyFacts {
	return keyFacts{
		r:        r,
		deps:     deps,
		keys:     keys,
		nonPrime: r.Minus(primeOf(keys)),
	}
}

// Is2NF reports whether r is in 2NF under deps.
//
// A dependency is skipped when its left side is exactly a candidate key or
// mentions any non-prime attribute. Any other dependency with a non-prime
// attribute on its right side is a violation. Only the first violation, in
// declaration order, is returned.
func Is2NF(r AttrSet, deps []Dependency) (bool, *Violation) {
	v := check2NF(factsFor(r, deps, CandidateKeys(r, deps)))
	return v.Satisfied, v.Violation
}

// Is3NF reports whether r is in 3NF under deps. A dependency whose left side
// is not a superkey violates 3NF when its right side holds a non-prime
// attribute. Only the first violation is returned.
func Is3NF(r AttrSet, deps []Dependency) (bool, *Violation) {
	v := check3NF(factsFor(r, deps, CandidateKeys(r, deps)))
	return v.Satisfied, v.Violation
}

// IsBCNF reports whether the left side of every dependency is a superkey of r.
// Only the first violation is returned.
func IsBCNF(r AttrSet, deps []Dependency) (bool, *Violation) {
	v := checkBCNF(factsFor(r, deps, CandidateKeys(r, deps)))
	return v.Satisfied, v.Violation
}

func check2NF(f keyFacts) Verdict {
	for i, d := range f.deps {
		if isCandidateKey(d.LHS, f.keys) || d.LHS.Intersects(f.nonPrime) {
			continue
		}

		if v := nonPrimeViolation(NF2, i, d, f.nonPrime); v != nil {
			return Verdict{Form: NF2, Violation: v}
		}
	}

	return Verdict{Form: NF2, Satisfied: true}
}

func check3NF(f keyFacts) Verdict {
	for i, d := range f.deps {
		if IsSuperkey(d.LHS, f.r, f.deps) {
			continue
		}

		if v := nonPrimeViolation(NF3, i, d, f.nonPrime); v != nil {
			return Verdict{Form: NF3, Violation: v}
		}
	}

	return Verdict{Form: NF3, Satisfied: true}
}

func checkBCNF(f keyFacts) Verdict {
	for i, d := range f.deps {
		if !IsSuperkey(d.LHS, f.r, f.deps) {
			return Verdict{Form: BCNF, Violation: &Violation{Form: BCNF, Dependency: d, Index: i}}
		}
	}

	return Verdict{Form: BCNF, Satisfied: true}
}

// nonPrimeViolation returns a violation naming the first non-prime attribute
// of d's right side, or nil if it has none.
func nonPrimeViolation(form NormalForm, i int, d Dependency, nonPrime AttrSet) *Violation {
	offending := d.RHS.Intersect(nonPrime)
	if offending.Empty() {
		return nil
	}

	return &Violation{
		Form:       form,
		Dependency: d,
		Index:      i,
		Attribute:  offending.attrs[0],
	}
}
