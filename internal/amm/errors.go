package amm

import "errors"

var (
	ErrIncorrectAmount          = errors.New("incorrect amount")
	ErrReservesEmpty            = errors.New("reserves empty")
	ErrPoolFull                 = errors.New("pool full")
	ErrTradingDisabled          = errors.New("trading disabled")
	ErrIncorrectDecimalMetadata = errors.New("incorrect decimal metadata")

	ErrNotAdmin     = errors.New("admin capability required")
	ErrPoolExists   = errors.New("pool already exists")
	ErrPoolNotFound = errors.New("pool not found")
)
