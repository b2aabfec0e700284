package reaction

import "errors"

var (
	ErrPairHandled = errors.New("hit pair already has a handler")
	ErrNoPairs     = errors.New("handler declares no hit pairs")
)
