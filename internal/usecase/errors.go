package usecase

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUpstreamFailed = errors.New("upstream unavailable")
	ErrNoData         = errors.New("no extractable data")
)
