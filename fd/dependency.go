package fd

import "strings"

// Dependency is a functional dependency LHS -> RHS.
type Dependency struct {
	LHS AttrSet `json:"lhs" yaml:"lhs"`
	RHS AttrSet `json:"rhs" yaml:"rhs"`
}

// NewDependency is shorthand for building a dependency from attribute names.
func NewDependency(lhs, rhs []string) Dependency {
	return Dependency{LHS: Attrs(lhs...), RHS: Attrs(rhs...)}
}

// Trivial reports whether the right-hand side is contained in the left.
func (d Dependency) Trivial() bool {
	return d.RHS.SubsetOf(d.LHS)
}

// Attributes returns every attribute the dependency mentions.
func (d Dependency) Attributes() AttrSet {
	return d.LHS.Union(d.RHS)
}

// String renders the dependency as "A, B -> C".
func (d Dependency) String() string {
	return strings.Join(d.LHS.Strings(), ", ") + " -> " + strings.Join(d.RHS.Strings(), ", ")
}

// Relation is a named attribute set together with its declared dependencies.
// Dependencies keep declaration order, which only affects which violation a
// normal-form check reports first.
type Relation struct {
	Name         string       `json:"name" yaml:"name"`
	Attributes   AttrSet      `json:"attributes" yaml:"attributes"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
}
