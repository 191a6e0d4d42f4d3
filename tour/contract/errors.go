package contract

import "errors"

var (
	ErrNotFound   = errors.New("no matching record")
	ErrValidation = errors.New("validation failed")
	ErrStorage    = errors.New("storage failure")
)
