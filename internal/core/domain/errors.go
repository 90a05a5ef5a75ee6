package domain

import "errors"

var (
	ErrInvalidSpec       = errors.New("invalid animation spec")
	ErrInvalidCoordinate = errors.New("invalid seat coordinate")
	ErrUnsupportedShape  = errors.New("unsupported persistence shape")
	ErrMalformedDocument = errors.New("malformed document")
)
