package content

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeInvalidQuery = "CONTENT_QUERY_INVALID"
	codeInvalidType  = "CONTENT_TYPE_INVALID"
)

// ParseError reports a content file that could not be read or parsed. The
// loader logs it and skips the file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidation reports whether err is a validation failure that should be
// surfaced to the caller as a bad request.
func IsValidation(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

func validationError(err error, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).WithTextCode(code)
}
