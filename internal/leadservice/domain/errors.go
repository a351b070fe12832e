package domain

import "errors"

var (
	// ErrNotFound indicates that a requested lead does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidStatus indicates a status outside the four known values.
	ErrInvalidStatus = errors.New("invalid lead status")
)
