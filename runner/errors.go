package runner

import "errors"

// Sentinel errors for the runner package.
var (
	// ErrMaxFailures is returned when the max failure limit is reached.
	ErrMaxFailures = errors.New("runner: max failures reached")

	// ErrUnknownFormat is returned for a formatter name that does not exist.
	ErrUnknownFormat = errors.New("runner: unknown format")

	// ErrInvalidAssertion is returned when an assertion does not compile.
	ErrInvalidAssertion = errors.New("runner: invalid assertion")

	// Test errors for use in unit tests.
	errTestStop = errors.New("test: stop")
)
