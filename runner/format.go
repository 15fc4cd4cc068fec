package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rlch/nfcheck/fd"
)

// Formats lists the formatter names NewFormatter accepts.
var Formats = []string{"text", "json", "yaml"}

// Formatter renders relation events and results.
type Formatter interface {
	Format(event Event, result *Result) error
	Summary(result *Result) error
}

// NewFormatter creates a formatter by name. Color only affects text output.
//
//nolint:ireturn // Formatters are selected at runtime.
func NewFormatter(name string, w io.Writer, color bool) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(w, NewStyles(w, color)), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "yaml":
		return NewYAMLFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats, ", "))
	}
}

// FormatHandler is a Handler that delegates to a Formatter.
type FormatHandler struct {
	formatter Formatter
	stderr    io.Writer
}

// NewFormatHandler creates a handler that formats events.
func NewFormatHandler(f Formatter, stderr io.Writer) *FormatHandler {
	return &FormatHandler{formatter: f, stderr: stderr}
}

// Event formats the event.
func (h *FormatHandler) Event(_ context.Context, event Event, result *Result) error {
	return h.formatter.Format(event, result)
}

// Err writes to stderr.
func (h *FormatHandler) Err(text string) error {
	_, err := h.stderr.Write([]byte(text + "\n"))

	return err
}

// Summary renders the final summary.
func (h *FormatHandler) Summary(result *Result) error {
	return h.formatter.Summary(result)
}

// -----------------------------------------------------------------------------
// Text Formatter
// -----------------------------------------------------------------------------

const banner = "***********************************"

// TextFormatter prints one report block per relation.
type TextFormatter struct {
	w      io.Writer
	styles *Styles
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(w io.Writer, styles *Styles) *TextFormatter {
	return &TextFormatter{w: w, styles: styles}
}

// Format prints the report of each evaluated relation.
func (t *TextFormatter) Format(event Event, _ *Result) error {
	switch event.Action {
	case ActionPass, ActionFail:
		t.header(event.Relation)
		t.report(event.Report)

		if event.Action == ActionFail {
			t.section("Assertion failed:")
			t.line(t.styles.Fail.Render(event.Assertion))
			t.blank()
		}
	case ActionError:
		t.header(event.Relation)
		t.section("Error:")
		t.line(t.styles.Error.Render(event.Error.Error()))
		t.blank()
	case ActionRun, ActionSkip:
		return nil
	}

	return nil
}

func (t *TextFormatter) header(name string) {
	b := t.styles.Banner.Render(banner)
	_, _ = fmt.Fprintln(t.w, b)
	_, _ = fmt.Fprintln(t.w, "\t\t"+t.styles.Name.Render(name))
	_, _ = fmt.Fprintln(t.w, b)
}

func (t *TextFormatter) report(r *fd.Report) {
	t.section("Candidate keys:")

	for _, k := range r.CandidateKeys {
		t.line(t.styles.Value.Render(k.String()))
	}

	t.blank()

	t.section("Prime attributes:")
	t.line(t.styles.Value.Render(r.Prime.String()))
	t.blank()

	t.section("Non-prime attributes:")
	t.line(t.styles.Value.Render(r.NonPrime.String()))
	t.blank()

	for _, v := range r.Verdicts() {
		t.section(v.Form.String() + " status:")

		if v.Satisfied {
			t.line(t.styles.Pass.Render("The relation is in " + v.Form.String()))
		} else {
			t.line(t.styles.Fail.Render(v.Violation.Reason()))
		}

		t.blank()
	}
}

func (t *TextFormatter) section(title string) {
	_, _ = fmt.Fprintln(t.w, t.styles.Heading.Render(title))
}

func (t *TextFormatter) line(s string) {
	_, _ = fmt.Fprintln(t.w, "\t"+s)
}

func (t *TextFormatter) blank() {
	_, _ = fmt.Fprintln(t.w)
}

// Summary prints relation counts per highest normal form.
func (t *TextFormatter) Summary(result *Result) error {
	for _, rr := range result.FailedRelations() {
		switch rr.Status {
		case ActionFail:
			_, _ = fmt.Fprintf(t.w, "%s %s: %s\n", t.styles.Fail.Render("FAIL"), rr.Name, rr.Assertion)
		case ActionError:
			_, _ = fmt.Fprintf(t.w, "%s %s: %v\n", t.styles.Error.Render("ERROR"), rr.Name, rr.Error)
		case ActionPass, ActionSkip, ActionRun:
			// Not failures
		}
	}

	status := t.styles.Pass.Render("PASS")
	if !result.Ok() {
		status = t.styles.Fail.Render("FAIL")
	}

	_, err := fmt.Fprintf(t.w, "%s %d relations: %s; %d failed, %d errors, %d skipped %s\n",
		status,
		result.Total,
		formCounts(result),
		result.Failed,
		result.Errors,
		result.Skipped,
		t.styles.Muted.Render("in "+result.Elapsed().Round(time.Millisecond).String()),
	)

	return err
}

// formCounts renders "1 BCNF, 0 3NF, 2 2NF, 0 1NF", strongest first.
func formCounts(result *Result) string {
	counts := highestCounts(result)
	parts := make([]string, 0, len(counts))

	for _, nf := range []fd.NormalForm{fd.BCNF, fd.NF3, fd.NF2, fd.NF1} {
		parts = append(parts, fmt.Sprintf("%d %s", counts[nf.String()], nf))
	}

	return strings.Join(parts, ", ")
}

func highestCounts(result *Result) map[string]int {
	result.mu.RLock()
	defer result.mu.RUnlock()

	out := make(map[string]int, len(result.Highest))
	for nf, n := range result.Highest {
		out[nf.String()] = n
	}

	return out
}

// -----------------------------------------------------------------------------
// JSON Formatter
// -----------------------------------------------------------------------------

// JSONFormatter outputs newline-delimited JSON, one object per relation.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Time      string     `json:"time"`
	Action    string     `json:"action"`
	File      string     `json:"file,omitempty"`
	Relation  string     `json:"relation"`
	Line      int        `json:"line,omitempty"`
	Elapsed   float64    `json:"elapsed"`
	Highest   string     `json:"highest,omitempty"`
	Report    *fd.Report `json:"report,omitempty"`
	Error     string     `json:"error,omitempty"`
	Assertion string     `json:"assertion,omitempty"`
}

// Format outputs a JSON object for each terminal event.
func (j *JSONFormatter) Format(event Event, _ *Result) error {
	if !event.Action.IsTerminal() {
		return nil
	}

	je := jsonEvent{
		Time:      event.Time.Format(time.RFC3339Nano),
		Action:    string(event.Action),
		File:      event.File,
		Relation:  event.Relation,
		Line:      event.Line,
		Elapsed:   event.Elapsed.Seconds(),
		Report:    event.Report,
		Assertion: event.Assertion,
	}

	if event.Report != nil {
		je.Highest = event.Report.Highest().String()
	}

	if event.Error != nil {
		je.Error = event.Error.Error()
	}

	return j.enc.Encode(je)
}

type summary struct {
	Action  string         `json:"action" yaml:"action"`
	Total   int            `json:"total" yaml:"total"`
	Passed  int            `json:"passed" yaml:"passed"`
	Failed  int            `json:"failed" yaml:"failed"`
	Skipped int            `json:"skipped" yaml:"skipped"`
	Errors  int            `json:"errors" yaml:"errors"`
	Highest map[string]int `json:"highest" yaml:"highest"`
	Elapsed float64        `json:"elapsed" yaml:"elapsed"`
	Ok      bool           `json:"ok" yaml:"ok"`
}

func newSummary(result *Result) summary {
	return summary{
		Action:  "summary",
		Total:   result.Total,
		Passed:  result.Passed,
		Failed:  result.Failed,
		Skipped: result.Skipped,
		Errors:  result.Errors,
		Highest: highestCounts(result),
		Elapsed: result.Elapsed().Seconds(),
		Ok:      result.Ok(),
	}
}

// Summary outputs the final JSON summary.
func (j *JSONFormatter) Summary(result *Result) error {
	return j.enc.Encode(newSummary(result))
}

// -----------------------------------------------------------------------------
// YAML Formatter
// -----------------------------------------------------------------------------

// YAMLFormatter outputs a YAML document stream, one document per relation
// followed by a summary document.
type YAMLFormatter struct {
	enc *yaml.Encoder
}

// NewYAMLFormatter creates a YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	return &YAMLFormatter{enc: enc}
}

type yamlEvent struct {
	Action    string     `yaml:"action"`
	File      string     `yaml:"file,omitempty"`
	Relation  string     `yaml:"relation"`
	Line      int        `yaml:"line,omitempty"`
	Highest   string     `yaml:"highest,omitempty"`
	Report    *fd.Report `yaml:"report,omitempty"`
	Error     string     `yaml:"error,omitempty"`
	Assertion string     `yaml:"assertion,omitempty"`
}

// Format outputs a YAML document for each terminal event.
func (y *YAMLFormatter) Format(event Event, _ *Result) error {
	if !event.Action.IsTerminal() {
		return nil
	}

	ye := yamlEvent{
		Action:    string(event.Action),
		File:      event.File,
		Relation:  event.Relation,
		Line:      event.Line,
		Report:    event.Report,
		Assertion: event.Assertion,
	}

	if event.Report != nil {
		ye.Highest = event.Report.Highest().String()
	}

	if event.Error != nil {
		ye.Error = event.Error.Error()
	}

	return y.enc.Encode(ye)
}

// Summary outputs the summary document and flushes the stream.
func (y *YAMLFormatter) Summary(result *Result) error {
	if err := y.enc.Encode(newSummary(result)); err != nil {
		return err
	}

	return y.enc.Close()
}
