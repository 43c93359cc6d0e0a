package directory

import (
	"errors"
	"fmt"

	"github.com/roach88/profiledir/internal/ir"
)

// ErrorCode categorizes directory errors.
type ErrorCode string

const (
	// ErrCodeInvalidUsername indicates a username shorter than the shard width.
	ErrCodeInvalidUsername ErrorCode = "INVALID_USERNAME"

	// ErrCodePrefixTooShort indicates a search prefix shorter than the shard width.
	ErrCodePrefixTooShort ErrorCode = "PREFIX_TOO_SHORT"

	// ErrCodeDuplicateUsername indicates the username is already registered.
	ErrCodeDuplicateUsername ErrorCode = "DUPLICATE_USERNAME"

	// ErrCodeNotFound indicates an edge points at a record the ledger does not
	// hold. This is an integrity failure, not an empty result.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeProfileExists indicates the caller already has a profile.
	ErrCodeProfileExists ErrorCode = "PROFILE_EXISTS"

	// ErrCodePolicyViolation indicates the profile failed the configured policy.
	ErrCodePolicyViolation ErrorCode = "POLICY_VIOLATION"
)

// Sentinels for errors.Is. Only Code is compared.
var (
	ErrInvalidUsername   = &Error{Code: ErrCodeInvalidUsername}
	ErrPrefixTooShort    = &Error{Code: ErrCodePrefixTooShort}
	ErrDuplicateUsername = &Error{Code: ErrCodeDuplicateUsername}
	ErrNotFound          = &Error{Code: ErrCodeNotFound}
	ErrProfileExists     = &Error{Code: ErrCodeProfileExists}
	ErrPolicyViolation   = &Error{Code: ErrCodePolicyViolation}
)

// Error is a directory failure with a stable code.
// Storage faults are never converted to Error; they pass through wrapped.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Username is the username or prefix involved, if any.
	Username string

	// Address is the record or shard address involved, if any.
	Address ir.Address

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Username != "" && e.Address != "":
		return fmt.Sprintf("%s: %s (username=%s, address=%s)", e.Code, e.Message, e.Username, e.Address)
	case e.Username != "":
		return fmt.Sprintf("%s: %s (username=%s)", e.Code, e.Message, e.Username)
	case e.Address != "":
		return fmt.Sprintf("%s: %s (address=%s)", e.Code, e.Message, e.Address)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsInvalidUsername returns true if err is an INVALID_USERNAME error.
func IsInvalidUsername(err error) bool { return hasCode(err, ErrCodeInvalidUsername) }

// IsPrefixTooShort returns true if err is a PREFIX_TOO_SHORT error.
func IsPrefixTooShort(err error) bool { return hasCode(err, ErrCodePrefixTooShort) }

// IsDuplicateUsername returns true if err is a DUPLICATE_USERNAME error.
func IsDuplicateUsername(err error) bool { return hasCode(err, ErrCodeDuplicateUsername) }

// IsNotFound returns true if err is a NOT_FOUND integrity error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsProfileExists returns true if err is a PROFILE_EXISTS error.
func IsProfileExists(err error) bool { return hasCode(err, ErrCodeProfileExists) }

// IsPolicyViolation returns true if err is a POLICY_VIOLATION error.
func IsPolicyViolation(err error) bool { return hasCode(err, ErrCodePolicyViolation) }

func newInvalidUsernameError(username string, cause error) *Error {
	return &Error{
		Code:     ErrCodeInvalidUsername,
		Message:  fmt.Sprintf("username must be at least %d characters", shardWidth),
		Username: username,
		Err:      cause,
	}
}

func newPrefixTooShortError(prefix string, cause error) *Error {
	return &Error{
		Code:     ErrCodePrefixTooShort,
		Message:  fmt.Sprintf("search prefix must be at least %d characters", shardWidth),
		Username: prefix,
		Err:      cause,
	}
}

func newDuplicateUsernameError(username string, shardAddr ir.Address) *Error {
	return &Error{
		Code:     ErrCodeDuplicateUsername,
		Message:  "username is already registered",
		Username: username,
		Address:  shardAddr,
	}
}

func newNotFoundError(addr ir.Address, cause error) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: "edge points at a missing record",
		Address: addr,
		Err:     cause,
	}
}

func newProfileExistsError(username string, existing ir.Address) *Error {
	return &Error{
		Code:     ErrCodeProfileExists,
		Message:  "identity already has a profile",
		Username: username,
		Address:  existing,
	}
}

func newPolicyViolationError(username string, cause error) *Error {
	return &Error{
		Code:     ErrCodePolicyViolation,
		Message:  cause.Error(),
		Username: username,
		Err:      cause,
	}
}
