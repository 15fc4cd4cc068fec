// Package analysis provides semantic analysis for relation schema files.
package analysis

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/rlch/nfcheck"
)

// Analyzer performs semantic analysis on schema files.
type Analyzer struct {
	// rules is the set of semantic checks to run.
	rules []*Rule

	// maxAttributes is the arity above which wide-relation reports.
	// Zero disables the check.
	maxAttributes int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRules replaces the default rule set.
func WithRules(rules ...*Rule) Option {
	return func(a *Analyzer) {
		a.rules = rules
	}
}

// WithMaxAttributes sets the arity reported by wide-relation.
func WithMaxAttributes(n int) Option {
	return func(a *Analyzer) {
		a.maxAttributes = n
	}
}

// NewAnalyzer creates a new analyzer with default rules.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{rules: DefaultRules()}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// AnalyzedFile is the result of analysing one input.
type AnalyzedFile struct {
	Path string

	// Schema is nil when the input did not parse.
	Schema *nfcheck.Schema

	// ParseError is the error returned by the parser, if any.
	ParseError error

	Diagnostics []Diagnostic

	// MaxAttributes is the limit wide-relation checks against.
	MaxAttributes int
}

// Analyze parses and analyzes a schema file.
// A parse error becomes a single parse-error diagnostic; no rules run.
func (a *Analyzer) Analyze(path string, content []byte) *AnalyzedFile {
	schema, err := nfcheck.Parse(path, content)
	if err != nil {
		return &AnalyzedFile{
			Path:          path,
			ParseError:    err,
			Diagnostics:   []Diagnostic{parseErrorToDiagnostic(path, err)},
			MaxAttributes: a.maxAttributes,
		}
	}

	return a.AnalyzeSchema(schema)
}

// AnalyzeSchema runs the rules over an already parsed schema.
func (a *Analyzer) AnalyzeSchema(schema *nfcheck.Schema) *AnalyzedFile {
	f := &AnalyzedFile{
		Path:          schema.Filename,
		Schema:        schema,
		Diagnostics:   []Diagnostic{},
		MaxAttributes: a.maxAttributes,
	}

	for _, rule := range a.rules {
		rule.Run(f)
	}

	return f
}

// HasErrors reports whether any diagnostic is error-level.
func (f *AnalyzedFile) HasErrors() bool {
	for _, d := range f.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Err joins every error-level diagnostic into one error, or returns nil.
func (f *AnalyzedFile) Err() error {
	var errs []error

	for _, d := range f.Diagnostics {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}

	return errors.Join(errs...)
}

func (f *AnalyzedFile) report(d Diagnostic) {
	if d.Source == "" {
		d.Source = "nfcheck"
	}

	f.Diagnostics = append(f.Diagnostics, d)
}

// DiagnosticSeverity orders diagnostics from most to least severe.
type DiagnosticSeverity int

// Severities, numbered like the LSP protocol.
const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a problem found in a schema file.
type Diagnostic struct {
	Span     nfcheck.Span
	Severity DiagnosticSeverity
	Message  string
	// Code is the name of the rule that produced the diagnostic.
	Code   string
	Source string

	// Err is the sentinel the diagnostic stands for, if any.
	Err error
}

// Error renders the diagnostic as file:line:col: severity: message.
func (d Diagnostic) Error() string {
	pos := d.Span.Start

	loc := fmt.Sprintf("%d:%d", pos.Line, pos.Column)
	if pos.Filename != "" {
		loc = pos.Filename + ":" + loc
	}

	return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
}

func (d Diagnostic) Unwrap() error { return d.Err }

func parseErrorToDiagnostic(path string, err error) Diagnostic {
	pos := lexer.Position{Filename: path}
	msg := err.Error()

	var perr *nfcheck.ParseError
	if errors.As(err, &perr) {
		pos.Line = perr.Line
		pos.Column = perr.Column
		msg = perr.Kind.Error()

		if perr.Err != nil {
			msg += ": " + perr.Err.Error()
		}
	}

	return Diagnostic{
		Span:     nfcheck.Span{Start: pos, End: pos},
		Severity: SeverityError,
		Message:  msg,
		Code:     "parse-error",
		Source:   "nfcheck",
		Err:      err,
	}
}
