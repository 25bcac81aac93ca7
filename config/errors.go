package config

import "errors"

// Configuration errors, checked with errors.Is.
var (
	ErrConfigNotFound  = errors.New("configuration file not found")
	ErrInvalidField    = errors.New("invalid configuration")
	ErrInvalidMonths   = errors.New("invalid month range")
	ErrInvalidWindow   = errors.New("invalid late-night window")
	ErrEmptyWindow     = errors.New("invalid late-night window: start and end must differ")
	ErrInvalidTimezone = errors.New("invalid timezone")

	ErrInvalidURLTemplate = errors.New("invalid URL template: needs {month} or both {year} and {mm}")
)
