package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeLockHeld     Code = "LOCK_HELD"
	CodeDependency   Code = "DEPENDENCY_ERROR"
	CodeSubmission   Code = "SUBMISSION_ERROR"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Metadata describes how the batch engine reacts to an error code.
type Metadata struct {
	// Fatal aborts the whole run; non-fatal errors are recorded per job.
	Fatal         bool
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Fatal:         false,
		Retryable:     false,
		PublicMessage: "validation failed",
	},
	CodeUnauthorized: {
		Fatal:         true,
		Retryable:     false,
		PublicMessage: "marketplace authentication failed",
	},
	CodeNotFound: {
		Fatal:         false,
		Retryable:     false,
		PublicMessage: "resource not found",
	},
	CodeLockHeld: {
		Fatal:         true,
		Retryable:     false,
		PublicMessage: "another run is active for this batch",
	},
	CodeDependency: {
		Fatal:         true,
		Retryable:     true,
		PublicMessage: "dependency unavailable",
	},
	CodeSubmission: {
		Fatal:         false,
		Retryable:     true,
		PublicMessage: "submission failed",
	},
	CodeInternal: {
		Fatal:         true,
		Retryable:     true,
		PublicMessage: "internal error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsFatal reports whether the error should abort the whole run.
func IsFatal(err error) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	return MetadataFor(typed.Code()).Fatal
}
