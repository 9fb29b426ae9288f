package model

import "errors"

var (
	// ErrConfiguration marks unrecognised tags and missing or out-of-range
	// parameters. It is never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrGeometry marks surfaces that cannot host the requested shapes.
	ErrGeometry = errors.New("geometry error")
)
