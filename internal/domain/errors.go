package domain

import "errors"

// common domain errors that cross module boundaries.
// data-quality problems (malformed or future timestamps) are filtered, not
// errored: these sentinels mark precondition violations only.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoWindows    = errors.New("no reporting windows available")
)
