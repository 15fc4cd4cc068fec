package nfcheck

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when no .nfcheck.yaml is found.
	ErrConfigNotFound = errors.New("nfcheck: no .nfcheck.yaml found")

	// ErrMalformedHeader is returned for a relation header that is not of the
	// form Name(A, B, ...).
	ErrMalformedHeader = errors.New("malformed relation header")

	// ErrMalformedDependency is returned for a dependency line without exactly
	// one "->" or with an empty side.
	ErrMalformedDependency = errors.New("malformed functional dependency")

	// ErrDependencyBeforeRelation is returned for a dependency line that
	// appears before any relation header.
	ErrDependencyBeforeRelation = errors.New("functional dependency before any relation header")

	// ErrDanglingAttribute marks a dependency that names an attribute its
	// relation does not declare. The analysis package reports it.
	ErrDanglingAttribute = errors.New("attribute not declared by relation")
)

// ParseError is an input error tied to a source line.
type ParseError struct {
	Filename string
	Line     int
	Column   int
	// Text is the offending line as read.
	Text string
	// Kind is one of the Err* sentinels above.
	Kind error
	// Err is the underlying grammar error, if any.
	Err error
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.Filename != "" {
		loc = e.Filename + ":" + loc
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", loc, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s: %v", loc, e.Kind)
}

// Unwrap exposes both the sentinel and the grammar error to errors.Is/As.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}
