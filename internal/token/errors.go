package token

import "errors"

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredToken         = errors.New("token expired")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
	ErrMissingKey           = errors.New("missing key")
)
