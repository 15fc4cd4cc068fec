package runner

import (
	"sync"
	"time"

	"github.com/rlch/nfcheck/fd"
)

// Result accumulates relation outcomes during a run.
type Result struct {
	mu sync.RWMutex

	StartTime time.Time
	EndTime   time.Time

	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int

	// Highest counts evaluated relations by their strongest normal form.
	Highest map[fd.NormalForm]int

	// Relations in the order they were reported.
	Relations []*RelationResult
}

// NewResult creates an initialized Result.
func NewResult() *Result {
	return &Result{
		StartTime: time.Now(),
		Highest:   make(map[fd.NormalForm]int),
	}
}

// Add records a terminal event in the result.
func (r *Result) Add(event Event) {
	if !event.Action.IsTerminal() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rr := &RelationResult{
		File:      event.File,
		Name:      event.Relation,
		Line:      event.Line,
		Status:    event.Action,
		Elapsed:   event.Elapsed,
		Report:    event.Report,
		Error:     event.Error,
		Assertion: event.Assertion,
	}

	r.Relations = append(r.Relations, rr)
	r.Total++

	if event.Report != nil && (event.Action == ActionPass || event.Action == ActionFail) {
		r.Highest[event.Report.Highest()]++
	}

	switch event.Action {
	case ActionPass:
		r.Passed++
	case ActionFail:
		r.Failed++
	case ActionSkip:
		r.Skipped++
	case ActionError:
		r.Errors++
	case ActionRun:
		// Not terminal
	}
}

// Finish marks the result as complete.
func (r *Result) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
}

// Elapsed returns the total run time.
func (r *Result) Elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}

	return r.EndTime.Sub(r.StartTime)
}

// Ok returns true if no assertion failed and no relation errored.
func (r *Result) Ok() bool {
	return r.Failures() == 0
}

// Failures returns the number of failed and errored relations.
func (r *Result) Failures() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Failed + r.Errors
}

// Reports returns the reports of every evaluated relation, in order.
func (r *Result) Reports() []*fd.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*fd.Report

	for _, rr := range r.Relations {
		if rr.Report != nil && rr.Status != ActionError {
			reports = append(reports, rr.Report)
		}
	}

	return reports
}

// FailedRelations returns the failed and errored relations.
func (r *Result) FailedRelations() []*RelationResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var failed []*RelationResult

	for _, rr := range r.Relations {
		if rr.Status == ActionFail || rr.Status == ActionError {
			failed = append(failed, rr)
		}
	}

	return failed
}

// RelationResult holds the outcome of a single relation.
type RelationResult struct {
	File    string
	Name    string
	Line    int
	Status  Action
	Elapsed time.Duration
	Report  *fd.Report
	Error   error

	// Assertion is the expression that did not hold.
	Assertion string
}
