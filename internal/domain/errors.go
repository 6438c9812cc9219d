package domain

import "errors"

var (
	// ErrTestNotFound indicates the requested test is not in the catalog.
	ErrTestNotFound = errors.New("test not found")
	// ErrNoActiveTest is returned when an attempt operation runs without a started attempt.
	ErrNoActiveTest = errors.New("no active test")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the active test.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAttemptNotFound indicates the requested attempt is not in the history store.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrInvalidTest is returned when a catalog write violates test invariants.
	ErrInvalidTest = errors.New("invalid test")
)
