package fd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Checker errors.
var (
	// ErrTooManyAttributes is returned when a relation is wider than the
	// configured maximum and key enumeration is refused.
	ErrTooManyAttributes = errors.New("fd: too many attributes for key enumeration")

	// ErrBudgetExceeded is returned when enumeration visits more subsets than
	// the configured budget allows.
	ErrBudgetExceeded = errors.New("fd: subset budget exceeded")
)

// ctxCheckInterval is how many subsets are visited between context checks.
const ctxCheckInterval = 1024

// Checker runs the key enumeration and normal-form checks with optional
// resource limits. The zero limits mean unbounded.
// A Checker holds no per-relation state and is safe for concurrent use.
type Checker struct {
	maxAttributes int
	maxSubsets    int
	logger        *zap.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithMaxAttributes refuses relations with more than n attributes.
// Enumeration visits 2^n subsets, so this is the main safety valve.
func WithMaxAttributes(n int) Option {
	return func(c *Checker) {
		c.maxAttributes = n
	}
}

// WithMaxSubsets stops enumeration after n closures have been computed.
func WithMaxSubsets(n int) Option {
	return func(c *Checker) {
		c.maxSubsets = n
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker creates a Checker with the given options.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// unbounded backs the package-level functions, which cannot fail.
var unbounded = NewChecker()

// CandidateKeys returns every minimum-size subset of r whose closure covers r.
func (c *Checker) CandidateKeys(ctx context.Context, r AttrSet, deps []Dependency) ([]AttrSet, error) {
	var keys []AttrSet

	best := -1

	err := c.enumerate(ctx, r, deps, func(subset AttrSet) bool {
		if best >= 0 && subset.Len() > best {
			return false
		}

		if r.SubsetOf(Closure(subset, deps)) {
			best = subset.Len()
			keys = append(keys, subset)
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// SuperKeys returns every subset of r whose closure covers r.
func (c *Checker) SuperKeys(ctx context.Context, r AttrSet, deps []Dependency) ([]AttrSet, error) {
	var supers []AttrSet

	err := c.enumerate(ctx, r, deps, func(subset AttrSet) bool {
		if r.SubsetOf(Closure(subset, deps)) {
			supers = append(supers, subset)
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	return supers, nil
}

// Report computes the full report for rel. Candidate keys are computed once
// and shared by every check, so all verdicts agree on them.
func (c *Checker) Report(ctx context.Context, rel Relation) (*Report, error) {
	start := time.Now()

	keys, err := c.CandidateKeys(ctx, rel.Attributes, rel.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("relation %s: %w", rel.Name, err)
	}

	report := buildReport(rel, keys)

	c.logger.Debug("Evaluated relation",
		zap.String("relation", rel.Name),
		zap.Int("attributes", rel.Attributes.Len()),
		zap.Int("dependencies", len(rel.Dependencies)),
		zap.Int("candidate_keys", len(keys)),
		zap.Stringer("highest", report.Highest()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return report, nil
}

// enumerate visits the subsets of r in order of increasing size, and within a
// size in lexicographic order of the sorted attributes. visit returns false to
// stop early.
func (c *Checker) enumerate(ctx context.Context, r AttrSet, deps []Dependency, visit func(AttrSet) bool) error {
	n := r.Len()
	if c.maxAttributes > 0 && n > c.maxAttributes {
		return fmt.Errorf("%w: %d attributes, limit %d", ErrTooManyAttributes, n, c.maxAttributes)
	}

	attrs := r.Slice()
	visited := 0

	defer func() {
		c.logger.Debug("Enumerated subsets",
			zap.Int("attributes", n),
			zap.Int("dependencies", len(deps)),
			zap.Int("visited", visited),
		)
	}()

	idx := make([]int, 0, n)
	buf := make([]Attribute, 0, n)

	for size := 0; size <= n; size++ {
		idx = idx[:size]
		for i := range idx {
			idx[i] = i
		}

		for {
			visited++

			if c.maxSubsets > 0 && visited > c.maxSubsets {
				return fmt.Errorf("%w: limit %d", ErrBudgetExceeded, c.maxSubsets)
			}

			if visited%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			buf = buf[:0]
			for _, i := range idx {
				buf = append(buf, attrs[i])
			}

			if !visit(NewAttrSet(buf...)) {
				return nil
			}

			if !nextCombination(idx, n) {
				break
			}
		}
	}

	return nil
}

// nextCombination advances idx to the next k-combination of [0, n) in
// lexicographic order, returning false when idx was the last one.
func nextCombination(idx []int, n int) bool {
	k := len(idx)

	i := k - 1
	for i >= 0 && idx[i] == n-k+i {
		i--
	}

	if i < 0 {
		return false
	}

	idx[i]++
	for j := i + 1; j < k; j++ {
		idx[j] = idx[j-1] + 1
	}

	return true
}
