package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrMalformedOdds = errors.New("malformed odds")
	ErrInvalidOrder  = errors.New("invalid order parameters")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrLockHeld      = errors.New("lock already held")
	ErrNoSnapshot    = errors.New("snapshot not available")
)
