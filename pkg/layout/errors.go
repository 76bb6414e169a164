package layout

import "github.com/cockroachdb/errors"

var (
	ErrInvalidLayout = errors.New("invalid layout")
	ErrUnknownType   = errors.New("unknown field type")
	ErrUnknownLayout = errors.New("unknown layout")
	ErrMissingField  = errors.New("missing field value")
	ErrInvalidValue  = errors.New("invalid field value")
)
