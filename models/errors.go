package models

import "fmt"

// FetchError reports a month that could not be made available locally.
// A zero Month means the zone lookup table.
type FetchError struct {
	Month MonthSpec
	URL   string
	// NotFound is set when the publisher has no file for the month.
	NotFound bool
	Err      error
}

func (e *FetchError) Error() string {
	target := e.Month.String()
	if e.Month.Year == 0 {
		target = "zone lookup"
	}
	if e.URL == "" {
		return fmt.Sprintf("fetch %s: %v", target, e.Err)
	}
	return fmt.Sprintf("fetch %s (%s): %v", target, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// LoadError reports a cached file that is unreadable or has an unexpected schema.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RenderError reports a dashboard that could not be rendered or written.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("render: %v", e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
