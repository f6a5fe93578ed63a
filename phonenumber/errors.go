package phonenumber

import (
	"errors"
	"fmt"
)

// The closed taxonomy of parse failures. Adding a kind is a breaking
// contract change; callers switch on these with errors.Is.
var (
	// ErrInvalidCountryCode: no country calling code could be determined,
	// or an explicit prefix was stripped but no valid code followed.
	ErrInvalidCountryCode = errors.New("invalid country calling code")

	// ErrNotANumber: the input does not look like a phone number at all.
	ErrNotANumber = errors.New("the string supplied did not seem to be a phone number")

	// ErrTooShortAfterIDD: an IDD prefix was recognised and stripped, but
	// too few digits remained.
	ErrTooShortAfterIDD = errors.New("phone number too short after IDD")

	// ErrTooShortNSN: the national significant number is shorter than any
	// possible number for the region.
	ErrTooShortNSN = errors.New("the string supplied is too short to be a phone number")

	// ErrTooLong: the input or resulting NSN exceeds the maximum length.
	ErrTooLong = errors.New("the string supplied is too long to be a phone number")
)

// ParseError wraps one of the five parse-failure kinds with detail about the
// failing input. Test the kind with errors.Is.
type ParseError struct {
	Kind   error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Kind }

func parseError(kind error, format string, args ...any) error {
	return &ParseError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// IsErrInvalidCountryCode reports whether err is the invalid-country-code
// parse failure.
func IsErrInvalidCountryCode(err error) bool {
	return errors.Is(err, ErrInvalidCountryCode)
}
