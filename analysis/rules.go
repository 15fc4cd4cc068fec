package analysis

import (
	"fmt"
	"strconv"

	"github.com/rlch/nfcheck"
	"github.com/rlch/nfcheck/fd"
)

// Rule represents a semantic analysis check.
// Inspired by go/analysis.Analyzer pattern.
type Rule struct {
	// Name is a short identifier for the rule (used in diagnostic codes).
	Name string

	// Doc is a brief description of what the rule checks.
	Doc string

	// Severity is the default severity for diagnostics from this rule.
	Severity DiagnosticSeverity

	// Run executes the rule and appends any diagnostics to the file.
	Run func(f *AnalyzedFile)
}

// DefaultRules returns all built-in semantic analysis rules.
func DefaultRules() []*Rule {
	return []*Rule{
		// Error-level checks.
		danglingAttributeRule,

		// Warning-level checks.
		duplicateAttributeRule,
		duplicateRelationRule,
		wideRelationRule,

		// Hint-level checks.
		trivialDependencyRule,
		emptyRelationRule,
	}
}

// ----------------------------------------------------------------------------
// Rule: dangling-attribute
// ----------------------------------------------------------------------------

var danglingAttributeRule = &Rule{
	Name:     "dangling-attribute",
	Doc:      "Reports dependencies naming attributes their relation does not declare.",
	Severity: SeverityError,
	Run:      checkDanglingAttributes,
}

func checkDanglingAttributes(f *AnalyzedFile) {
	if f.Schema == nil {
		return
	}

	for _, r := range f.Schema.Relations {
		declared := r.AttributeSet()

		for _, d := range r.Dependencies {
			for _, ref := range d.Refs() {
				if declared.Contains(fd.Attribute(ref.Name)) {
					continue
				}

				f.report(Diagnostic{
					Span:     ref.Span(),
					Severity: SeverityError,
					Message: fmt.Sprintf("%s: attribute %s is not declared by relation %s",
						nfcheck.FormatDependency(d), strconv.Quote(ref.Name), r.Name),
					Code: "dangling-attribute",
					Err:  nfcheck.ErrDanglingAttribute,
				})
			}
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: duplicate-attribute
// ----------------------------------------------------------------------------

var duplicateAttributeRule = &Rule{
	Name:     "duplicate-attribute",
	Doc:      "Reports attributes declared more than once in a relation header.",
	Severity: SeverityWarning,
	Run:      checkDuplicateAttributes,
}

func checkDuplicateAttributes(f *AnalyzedFile) {
	if f.Schema == nil {
		return
	}

	for _, r := range f.Schema.Relations {
		seen := make(map[string]bool)

		for _, ref := range r.Attributes {
			if seen[ref.Name] {
				f.report(Diagnostic{
					Span:     ref.Span(),
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("duplicate attribute %s in relation %s", strconv.Quote(ref.Name), r.Name),
					Code:     "duplicate-attribute",
				})

				continue
			}

			seen[ref.Name] = true
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: duplicate-relation
// ----------------------------------------------------------------------------

var duplicateRelationRule = &Rule{
	Name:     "duplicate-relation",
	Doc:      "Reports relation names declared more than once in a file.",
	Severity: SeverityWarning,
	Run:      checkDuplicateRelations,
}

func checkDuplicateRelations(f *AnalyzedFile) {
	if f.Schema == nil {
		return
	}

	first := make(map[string]*nfcheck.RelationDecl)

	for _, r := range f.Schema.Relations {
		prev, ok := first[r.Name]
		if !ok {
			first[r.Name] = r
			continue
		}

		f.report(Diagnostic{
			Span:     r.Span(),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("relation %s already declared at line %d", r.Name, prev.Pos.Line),
			Code:     "duplicate-relation",
		})
	}
}

// ----------------------------------------------------------------------------
// Rule: wide-relation
// ----------------------------------------------------------------------------

var wideRelationRule = &Rule{
	Name:     "wide-relation",
	Doc:      "Reports relations with more attributes than key enumeration accepts.",
	Severity: SeverityWarning,
	Run:      checkWideRelations,
}

func checkWideRelations(f *AnalyzedFile) {
	if f.Schema == nil || f.MaxAttributes <= 0 {
		return
	}

	for _, r := range f.Schema.Relations {
		n := r.AttributeSet().Len()
		if n <= f.MaxAttributes {
			continue
		}

		f.report(Diagnostic{
			Span:     r.Span(),
			Severity: SeverityWarning,
			Message: fmt.Sprintf("relation %s has %d attributes; key enumeration is limited to %d",
				r.Name, n, f.MaxAttributes),
			Code: "wide-relation",
		})
	}
}

// ----------------------------------------------------------------------------
// Rule: trivial-dependency
// ----------------------------------------------------------------------------

var trivialDependencyRule = &Rule{
	Name:     "trivial-dependency",
	Doc:      "Reports dependencies whose right side is contained in the left side.",
	Severity: SeverityHint,
	Run:      checkTrivialDependencies,
}

func checkTrivialDependencies(f *AnalyzedFile) {
	if f.Schema == nil {
		return
	}

	for _, r := range f.Schema.Relations {
		for _, d := range r.Dependencies {
			if !d.Dependency().Trivial() {
				continue
			}

			f.report(Diagnostic{
				Span:     d.Span(),
				Severity: SeverityHint,
				Message:  "trivial dependency: " + nfcheck.FormatDependency(d),
				Code:     "trivial-dependency",
			})
		}
	}
}

// ----------------------------------------------------------------------------
// Rule: empty-relation
// ----------------------------------------------------------------------------

var emptyRelationRule = &Rule{
	Name:     "empty-relation",
	Doc:      "Reports relations declared without attributes.",
	Severity: SeverityHint,
	Run:      checkEmptyRelations,
}

func checkEmptyRelations(f *AnalyzedFile) {
	if f.Schema == nil {
		return
	}

	for _, r := range f.Schema.Relations {
		if len(r.Attributes) > 0 {
			continue
		}

		f.report(Diagnostic{
			Span:     r.Span(),
			Severity: SeverityHint,
			Message:  "relation " + r.Name + " has no attributes",
			Code:     "empty-relation",
		})
	}
}
