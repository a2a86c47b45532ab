// Package error defines domain-specific errors for the streaming subscription backend.
package error

import "errors"

// Mutual connection domain errors.
var (
	// ErrNotEnoughMembers is returned when fewer users than the minimum are selected for a group.
	ErrNotEnoughMembers = errors.New("select at least two users to form a mutual group")

	// ErrDuplicateMembers is returned when the same user is selected more than once.
	ErrDuplicateMembers = errors.New("each user can only be invited once per group")

	// ErrUnknownPlan is returned when the requested plan is not in the catalog.
	ErrUnknownPlan = errors.New("unknown subscription plan")

	// ErrAdminMessageRequired is returned when the admin message is empty and one is required.
	ErrAdminMessageRequired = errors.New("admin message is required")

	// ErrUnknownUsers is returned when some selected users do not exist.
	ErrUnknownUsers = errors.New("one or more selected users do not exist")

	// ErrInvalidThreshold is returned when a low-usage threshold is negative.
	ErrInvalidThreshold = errors.New("threshold minutes must not be negative")

	// ErrInviteNotFoundOrUnauthorized is returned when an invitation does not exist or belongs to another user.
	// Both cases share one message so callers cannot probe for other users' invitations.
	ErrInviteNotFoundOrUnauthorized = errors.New("invite not found")

	// ErrInviteAlreadyResponded is returned when the invitation was already accepted or declined.
	ErrInviteAlreadyResponded = errors.New("invite has already been responded to")

	// ErrAlreadyActiveMember is returned when a user already belongs to an active mutual group.
	ErrAlreadyActiveMember = errors.New("user is already an active member of a mutual group")

	// ErrMutualGroupNotFound is returned when a group is not found.
	ErrMutualGroupNotFound = errors.New("mutual group not found")

	// ErrGroupNotForming is returned when an operation requires a FORMING group.
	ErrGroupNotForming = errors.New("mutual group is no longer forming")

	// ErrStorageUnavailable is returned when the backing store fails. The operation may be retried.
	ErrStorageUnavailable = errors.New("storage unavailable, please retry")
)

// MutualErrorCode defines error codes for mutual connection errors.
// Format: MUT-XXYYYY where XX is category and YYYY is specific error.
type MutualErrorCode string

const (
	// Resource not found errors (01XXXX)
	ErrCodeInviteNotFoundOrUnauthorized MutualErrorCode = "MUT-010001"
	ErrCodeMutualGroupNotFound          MutualErrorCode = "MUT-010002"

	// Validation errors (02XXXX)
	ErrCodeNotEnoughMembers     MutualErrorCode = "MUT-020001"
	ErrCodeDuplicateMembers     MutualErrorCode = "MUT-020002"
	ErrCodeUnknownPlan          MutualErrorCode = "MUT-020003"
	ErrCodeAdminMessageRequired MutualErrorCode = "MUT-020004"
	ErrCodeUnknownUsers         MutualErrorCode = "MUT-020005"
	ErrCodeInvalidThreshold     MutualErrorCode = "MUT-020006"
	ErrCodeMissingMutualFields  MutualErrorCode = "MUT-020007"

	// Conflict errors (03XXXX)
	ErrCodeInviteAlreadyResponded MutualErrorCode = "MUT-030001"
	ErrCodeAlreadyActiveMember    MutualErrorCode = "MUT-030002"
	ErrCodeGroupNotForming        MutualErrorCode = "MUT-030003"

	// Infrastructure errors (05XXXX)
	ErrCodeStorageUnavailable MutualErrorCode = "MUT-050001"
)

// MutualError represents a mutual connection error with code and message.
type MutualError struct {
	Code    MutualErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *MutualError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *MutualError) Unwrap() error {
	return e.Err
}

// NewMutualError creates a new MutualError with the given code and message.
func NewMutualError(code MutualErrorCode, message string, err error) *MutualError {
	return &MutualError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidation reports whether the code belongs to the validation category.
func (c MutualErrorCode) IsValidation() bool {
	return len(c) >= 6 && c[4:6] == "02"
}
