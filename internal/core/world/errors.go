package world

import "errors"

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrInvalidBundle  = errors.New("invalid component bundle")
)
