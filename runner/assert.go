package runner

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rlch/nfcheck/fd"
)

// Assertion is a compiled boolean expression every report must satisfy.
//
// Expressions see the fields of Env:
//
//	Satisfies("3NF") && len(Keys) == 1
//	Highest == "BCNF" || "Id" in Prime
type Assertion struct {
	Source  string
	program *vm.Program
}

// Env is the environment assertions are evaluated against.
type Env struct {
	Name         string     `expr:"Name"`
	Attributes   []string   `expr:"Attributes"`
	Dependencies []string   `expr:"Dependencies"`
	Keys         [][]string `expr:"Keys"`
	Prime        []string   `expr:"Prime"`
	NonPrime     []string   `expr:"NonPrime"`
	NF2          bool       `expr:"NF2"`
	NF3          bool       `expr:"NF3"`
	BCNF         bool       `expr:"BCNF"`
	Highest      string     `expr:"Highest"`

	report *fd.Report
}

// Satisfies reports whether the relation meets the named normal form.
// Unknown names are never satisfied.
func (e Env) Satisfies(form string) bool {
	nf, err := fd.ParseNormalForm(form)
	if err != nil || e.report == nil {
		return false
	}

	return e.report.Satisfies(nf)
}

// NewEnv exposes a report to assertions.
func NewEnv(r *fd.Report) Env {
	keys := make([][]string, len(r.CandidateKeys))
	for i, k := range r.CandidateKeys {
		keys[i] = k.Strings()
	}

	deps := make([]string, len(r.Relation.Dependencies))
	for i, d := range r.Relation.Dependencies {
		deps[i] = d.String()
	}

	return Env{
		Name:         r.Name(),
		Attributes:   r.Relation.Attributes.Strings(),
		Dependencies: deps,
		Keys:         keys,
		Prime:        r.Prime.Strings(),
		NonPrime:     r.NonPrime.Strings(),
		NF2:          r.NF2.Satisfied,
		NF3:          r.NF3.Satisfied,
		BCNF:         r.BCNF.Satisfied,
		Highest:      r.Highest().String(),
		report:       r,
	}
}

// CompileAssertion compiles src against Env. The expression must be boolean.
func CompileAssertion(src string) (*Assertion, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidAssertion)
	}

	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAssertion, src, err)
	}

	return &Assertion{Source: src, program: program}, nil
}

// CompileAssertions compiles every expression, stopping at the first error.
func CompileAssertions(srcs []string) ([]*Assertion, error) {
	out := make([]*Assertion, 0, len(srcs))

	for _, src := range srcs {
		a, err := CompileAssertion(src)
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, nil
}

// Check evaluates the assertion against a report.
func (a *Assertion) Check(r *fd.Report) (bool, error) {
	out, err := expr.Run(a.program, NewEnv(r))
	if err != nil {
		return false, fmt.Errorf("assertion %s: %w", a.Source, err)
	}

	ok, _ := out.(bool)

	return ok, nil
}
