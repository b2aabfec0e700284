package collision

import "errors"

var (
	ErrPairRegistered = errors.New("collision pair already registered")
	ErrSamePair       = errors.New("collision pair uses the same category twice")
	ErrNotCategory    = errors.New("collision pair member is not a category")
)
