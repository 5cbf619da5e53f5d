package wallet

import "errors"

var (
	ErrUnavailable  = errors.New("wallet unavailable")
	ErrUnauthorized = errors.New("wallet session unauthorized")
)
