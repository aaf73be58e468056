package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput indicates missing or malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyCompleted indicates the document finished extraction and must
	// not be reprocessed.
	ErrAlreadyCompleted = errors.New("document already completed")
	// ErrNotClaimable indicates another execution currently holds the
	// processing claim.
	ErrNotClaimable = errors.New("document not claimable")
	// ErrAttemptsExhausted indicates the retry bound is spent; the document
	// stays failed permanently.
	ErrAttemptsExhausted = errors.New("extraction attempts exhausted")
)
