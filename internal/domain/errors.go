package domain

import "errors"

// Stage-boundary errors. Each pipeline stage validates its input and fails
// fast with one of these rather than letting bad data surface as NaNs
// downstream.
var (
	// ErrSchema covers input files that are missing required columns after
	// header mapping, or that contain unparsable dates.
	ErrSchema = errors.New("input schema error")

	// ErrInsufficientData covers tables too small to feature-engineer or to
	// split into train/validation partitions.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoModel covers forecasting without a previously trained artifact.
	ErrNoModel = errors.New("no trained model")
)
