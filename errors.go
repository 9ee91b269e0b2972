package lcfiplot

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks a setup problem: the job cannot produce meaningful
	// plots and must stop.
	ErrConfig = errors.New("lcfiplot: configuration error")

	// ErrMissingCollection is a configured collection the event does not
	// carry. It wraps ErrConfig.
	ErrMissingCollection = fmt.Errorf("%w: missing collection", ErrConfig)

	// ErrShapeMismatch is returned when two point sets of different length
	// are paired.
	ErrShapeMismatch = errors.New("lcfiplot: point sets differ in length")

	ErrNotInitialized = errors.New("lcfiplot: no run header processed")
	ErrFinalized      = errors.New("lcfiplot: processor already finalized")
)
