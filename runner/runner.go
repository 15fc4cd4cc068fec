package runner

import (
	"context"
	"errors"
	"regexp"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rlch/nfcheck"
	"github.com/rlch/nfcheck/fd"
)

// Runner evaluates every relation of one or more schemas.
type Runner struct {
	handler    Handler
	failFast   bool
	filter     *regexp.Regexp
	workers    int
	checker    *fd.Checker
	assertions []*Assertion
	logger     *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithHandler sets the event handler.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithFailFast stops on the first failed or errored relation.
func WithFailFast(enabled bool) Option {
	return func(r *Runner) {
		r.failFast = enabled
	}
}

// WithFilter only evaluates relations whose name matches re. The others are
// reported as skipped.
func WithFilter(re *regexp.Regexp) Option {
	return func(r *Runner) {
		r.filter = re
	}
}

// WithWorkers bounds how many relations are evaluated at once.
// Zero or less means one per CPU.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithChecker sets the checker used to build reports.
func WithChecker(c *fd.Checker) Option {
	return func(r *Runner) {
		if c != nil {
			r.checker = c
		}
	}
}

// WithAssertions sets expressions every report must satisfy.
func WithAssertions(assertions ...*Assertion) Option {
	return func(r *Runner) {
		r.assertions = assertions
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{
		checker: fd.NewChecker(),
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}

	return r
}

// job is one relation to evaluate.
type job struct {
	file  string
	index int
	decl  *nfcheck.RelationDecl
}

// outcome is filled by a worker and read by the delivery loop once done is
// closed.
type outcome struct {
	done chan struct{}

	skipped   bool
	report    *fd.Report
	err       error
	assertion string
	elapsed   time.Duration
}

// Run evaluates the relations of the given schemas and returns the results.
// Relations may be evaluated in parallel but handlers always see them in
// input order. Evaluation errors are reported as events; the returned error
// is a handler error or the context's.
func (r *Runner) Run(ctx context.Context, schemas ...*nfcheck.Schema) (*Result, error) {
	result := NewResult()

	handlers := []Handler{NewResultHandler()}
	if r.handler != nil {
		handlers = append(handlers, r.handler)
	}

	if r.failFast {
		handlers = append(handlers, NewStopOnFailHandler(1))
	}

	handler := NewMultiHandler(handlers...)

	for _, s := range schemas {
		if len(s.Relations) > 0 {
			continue
		}

		if err := handler.Err(schemaName(s) + ": no relations declared"); err != nil {
			result.Finish()
			return result, err
		}
	}

	jobs := collectJobs(schemas)
	outcomes := make([]*outcome, len(jobs))

	for i := range outcomes {
		outcomes[i] = &outcome{done: make(chan struct{})}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(r.workers)

	scheduled := make(chan struct{})

	go func() {
		defer close(scheduled)

		for i, j := range jobs {
			o := outcomes[i]

			if !r.matchesFilter(j.decl.Name) {
				o.skipped = true
				close(o.done)

				continue
			}

			if gctx.Err() != nil {
				return
			}

			g.Go(func() error {
				defer close(o.done)
				r.evaluate(gctx, j, o)

				return nil
			})
		}
	}()

	var runErr error

loop:
	for i, j := range jobs {
		o := outcomes[i]

		select {
		case <-o.done:
		case <-runCtx.Done():
			break loop
		}

		err := r.deliver(runCtx, handler, j, o, result)
		if errors.Is(err, ErrMaxFailures) {
			r.logger.Debug("Stopping after failure", zap.String("relation", j.decl.Name))
			break
		}

		if err != nil {
			runErr = err
			break
		}
	}

	cancel()
	<-scheduled
	_ = g.Wait()

	result.Finish()

	r.logger.Debug("Run finished",
		zap.Int("relations", result.Total),
		zap.Int("passed", result.Passed),
		zap.Int("failed", result.Failed),
		zap.Int("errors", result.Errors),
		zap.Int("skipped", result.Skipped),
		zap.Duration("elapsed", result.Elapsed()))

	if runErr != nil {
		return result, runErr
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

func schemaName(s *nfcheck.Schema) string {
	if s.Filename == "" {
		return "input"
	}

	return s.Filename
}

func collectJobs(schemas []*nfcheck.Schema) []job {
	var jobs []job

	for _, s := range schemas {
		for _, decl := range s.Relations {
			jobs = append(jobs, job{file: s.Filename, index: len(jobs), decl: decl})
		}
	}

	return jobs
}

// evaluate builds the report for one relation and checks the assertions.
func (r *Runner) evaluate(ctx context.Context, j job, o *outcome) {
	start := time.Now()
	defer func() { o.elapsed = time.Since(start) }()

	report, err := r.checker.Report(ctx, j.decl.Relation())
	if err != nil {
		o.err = err
		return
	}

	o.report = report

	for _, a := range r.assertions {
		ok, err := a.Check(report)
		if err != nil {
			o.err = err
			return
		}

		if !ok {
			o.assertion = a.Source
			return
		}
	}
}

// deliver emits the events of one relation.
func (r *Runner) deliver(ctx context.Context, handler Handler, j job, o *outcome, result *Result) error {
	base := Event{
		File:     j.file,
		Relation: j.decl.Name,
		Index:    j.index,
		Line:     j.decl.Pos.Line,
	}

	if o.skipped {
		return handler.Event(ctx, at(base, ActionSkip), result)
	}

	if err := handler.Event(ctx, at(base, ActionRun), result); err != nil {
		return err
	}

	end := at(base, ActionPass)
	end.Elapsed = o.elapsed
	end.Report = o.report

	switch {
	case o.err != nil:
		end.Action = ActionError
		end.Error = o.err
	case o.assertion != "":
		end.Action = ActionFail
		end.Assertion = o.assertion
	}

	return handler.Event(ctx, end, result)
}

func at(e Event, action Action) Event {
	e.Time = time.Now()
	e.Action = action

	return e
}

func (r *Runner) matchesFilter(name string) bool {
	if r.filter == nil {
		return true
	}

	return r.filter.MatchString(name)
}
