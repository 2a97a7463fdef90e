// Package wrappers provides small error helpers. Errs mirrors the
// teacher's utils/wrappers.Errs accumulator and keeps only the first
// non-nil error it is given; Join and MultiErr combine every non-nil error
// into one. No other package in this module calls them.
package wrappers

import "strings"

// Errs records the first non-nil error passed to Add and ignores the rest.
type Errs struct {
	Err error
}

// Add records err if it is non-nil and Errs hasn't already recorded one.
func (errs *Errs) Add(errors ...error) {
	if errs.Err != nil {
		return
	}
	for _, err := range errors {
		if err != nil {
			errs.Err = err
			return
		}
	}
}

// Errored reports whether any error has been recorded.
func (errs *Errs) Errored() bool {
	return errs.Err != nil
}

// MultiErr joins a list of non-nil errors into one, for callers that want
// every failure, not just the first.
type MultiErr []error

func (m MultiErr) Error() string {
	parts := make([]string, 0, len(m))
	for _, e := range m {
		if e != nil {
			parts = append(parts, e.Error())
		}
	}
	return strings.Join(parts, "; ")
}

// Join returns nil if errs contains no non-nil errors, the single error if
// exactly one is non-nil, or a MultiErr otherwise.
func Join(errs ...error) error {
	var nonNil []error
	for _, e := range errs {
		if e != nil {
			nonNil = append(nonNil, e)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return MultiErr(nonNil)
	}
}
