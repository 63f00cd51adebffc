package records

import "errors"

var (
	ErrTableFull       = errors.New("records: object table full")
	ErrInvalidRank     = errors.New("records: rank out of range")
	ErrUnused          = errors.New("records: rank not in use")
	ErrShadowTableFull = errors.New("records: shadow table full")
	ErrNoShadow        = errors.New("records: object has no shadow")
)
