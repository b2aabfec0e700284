package bus

import "errors"

var (
	ErrPairDeclared   = errors.New("pair already declared")
	ErrPairUnknown    = errors.New("pair not declared")
	ErrReaderAttached = errors.New("pair already has a reader")
)
