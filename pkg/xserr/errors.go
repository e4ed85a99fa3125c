// Package xserr defines the two error severities used across the board
// workflows. A major error means the operation cannot continue meaningfully
// (broken link, wrong bitstream); a minor error is a well-formed but
// unsatisfactory result (bad checksum, failed diagnostic) that a caller may
// display and retry without treating the hardware as broken.
package xserr

import (
	"errors"
	"fmt"
)

// Major is a fatal hardware or protocol error.
type Major struct {
	msg string
	err error
}

// Minor is a recoverable validation or test error.
type Minor struct {
	msg string
	err error
}

func (e *Major) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Major) Unwrap() error { return e.err }

func (e *Minor) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Minor) Unwrap() error { return e.err }

// Majorf builds a major error with fmt-style formatting. A trailing error
// argument wrapped with %w stays unwrappable through errors.Is/As.
func Majorf(format string, args ...interface{}) error {
	wrapped := fmt.Errorf(format, args...)
	return &Major{msg: wrapped.Error(), err: errors.Unwrap(wrapped)}
}

// Minorf builds a minor error with fmt-style formatting.
func Minorf(format string, args ...interface{}) error {
	wrapped := fmt.Errorf(format, args...)
	return &Minor{msg: wrapped.Error(), err: errors.Unwrap(wrapped)}
}

// IsMajor reports whether any error in err's chain is a major error.
func IsMajor(err error) bool {
	var e *Major
	return errors.As(err, &e)
}

// IsMinor reports whether any error in err's chain is a minor error.
func IsMinor(err error) bool {
	var e *Minor
	return errors.As(err, &e)
}
