package services

import "errors"

var (
	ErrInvalid        = errors.New("invalid input")
	ErrForbidden      = errors.New("forbidden")
	ErrProductMissing = errors.New("product not found")
)
