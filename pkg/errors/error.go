// Package errors carries the feed's coded errors.
//
// Codes are grouped by range:
//   - 1-99: unknown
//   - 100-199: configuration (invalid filters, unknown assets or currencies, bad settings)
//   - 200-299: data (malformed price series fed into a calculation)
//   - 300-399: indicator registration and lookup
//   - 700-799: market data (price source failures, cancelled fetches)
//
// Insufficient history is never an error: calculators report it as absent
// indicator values instead.
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeUnknownAsset, "no price profile for asset %s", asset)
//
//	if errors.IsConfigurationError(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Category is the range an ErrorCode belongs to.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryConfiguration
	CategoryData
	CategoryIndicator
	CategoryMarketData
)

// Category reports the range c falls in.
func (c ErrorCode) Category() Category {
	switch {
	case c >= 100 && c < 200:
		return CategoryConfiguration
	case c >= 200 && c < 300:
		return CategoryData
	case c >= 300 && c < 400:
		return CategoryIndicator
	case c >= 700 && c < 800:
		return CategoryMarketData
	default:
		return CategoryUnknown
	}
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error renders "[code] message" followed by ": cause" when wrapped.
func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is and As forward to the standard library so callers need only this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the first *Error in err's chain, or
// ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var coded *Error
	if !errors.As(err, &coded) {
		return ErrCodeUnknown
	}

	return coded.Code
}

func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsConfigurationError covers unknown assets, unknown currencies and invalid
// filter states among other settings problems.
func IsConfigurationError(err error) bool {
	return GetCode(err).Category() == CategoryConfiguration
}

func IsDataError(err error) bool {
	return GetCode(err).Category() == CategoryData
}
