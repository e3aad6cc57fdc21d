package errors

import "errors"

// Domain errors
var (
	// Baseline errors
	ErrBaselineNotFound  = errors.New("baseline file not found")
	ErrBaselineMalformed = errors.New("baseline file is malformed")
	ErrEmptyBaselinePath = errors.New("baseline path cannot be empty")

	// Session errors
	ErrEmptySiteURL   = errors.New("site URL cannot be empty")
	ErrInvalidSiteURL = errors.New("site URL is invalid")
	ErrNoReport       = errors.New("no report found; run a watch session first")

	// Repository errors
	ErrSerializationFailed   = errors.New("serialization failed")
	ErrDeserializationFailed = errors.New("deserialization failed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
