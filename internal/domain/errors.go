package domain

import "errors"

var (
	ErrEmptyQuery   = errors.New("empty query")
	ErrQueryTooLong = errors.New("query too long")
)

var (
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrNoCandidates        = errors.New("no candidate providers")
)

var (
	ErrInvalidURL     = errors.New("invalid url")
	ErrInvalidQuality = errors.New("quality must be between 0.0 and 1.0")
	ErrEmptyTitle     = errors.New("empty title")
)
