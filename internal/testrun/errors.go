package testrun

import "errors"

var (
	// ErrInvalidArgument indicates a required identifier is missing or
	// malformed. Raised before any network call; recoverable by caller
	// correction.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoActiveTestSession indicates a poll was attempted with no
	// committed session record for the project. Recoverable by starting a
	// test run first; never triggers a network call.
	ErrNoActiveTestSession = errors.New("no active test session; start a test run first")
)
