package errors

import "errors"

var (
	ErrNotFound = errors.New("thing not found")

	ErrInvalidID = errors.New("invalid thing ID format")
)
