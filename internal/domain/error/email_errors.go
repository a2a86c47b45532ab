package error

import "errors"

// Email delivery errors. An *EmailError matches the sentinel of its code
// with errors.Is.
var (
	// ErrEmailQueueFailed is returned when a job cannot be written to the outbox.
	ErrEmailQueueFailed = errors.New("failed to queue email")

	// ErrEmailJobNotFound is returned when an outbox job does not exist.
	ErrEmailJobNotFound = errors.New("email job not found")

	// ErrPermanentEmailFailure is returned when the provider rejects a message outright.
	ErrPermanentEmailFailure = errors.New("email rejected by provider")

	// ErrTemporaryEmailFailure is returned when delivery may succeed on a later attempt.
	ErrTemporaryEmailFailure = errors.New("email provider unavailable")

	// ErrInvalidTemplate is returned for a job whose template type has no renderer.
	ErrInvalidTemplate = errors.New("invalid email template")

	// ErrTemplateRenderFailed is returned when a known template fails to execute.
	ErrTemplateRenderFailed = errors.New("failed to render email template")
)

// EmailErrorCode identifies an email failure.
// Format: EMAIL-XXYYYY where XX is category and YYYY is specific error.
type EmailErrorCode string

const (
	// Outbox errors (01XXXX)
	ErrCodeEmailQueueFailed EmailErrorCode = "EMAIL-010001"
	ErrCodeEmailJobNotFound EmailErrorCode = "EMAIL-010002"

	// Delivery errors (02XXXX)
	ErrCodePermanentEmailFailure EmailErrorCode = "EMAIL-020001"
	ErrCodeTemporaryEmailFailure EmailErrorCode = "EMAIL-020002"

	// Template errors (03XXXX)
	ErrCodeInvalidTemplate      EmailErrorCode = "EMAIL-030001"
	ErrCodeTemplateRenderFailed EmailErrorCode = "EMAIL-030002"
)

var emailSentinels = map[EmailErrorCode]error{
	ErrCodeEmailQueueFailed:      ErrEmailQueueFailed,
	ErrCodeEmailJobNotFound:      ErrEmailJobNotFound,
	ErrCodePermanentEmailFailure: ErrPermanentEmailFailure,
	ErrCodeTemporaryEmailFailure: ErrTemporaryEmailFailure,
	ErrCodeInvalidTemplate:       ErrInvalidTemplate,
	ErrCodeTemplateRenderFailed:  ErrTemplateRenderFailed,
}

// EmailError carries a code next to the provider or storage error that caused it.
type EmailError struct {
	Code    EmailErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *EmailError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *EmailError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel registered for the error's code.
func (e *EmailError) Is(target error) bool {
	sentinel, ok := emailSentinels[e.Code]
	return ok && sentinel == target
}

// Permanent reports whether the job should stop retrying.
func (e *EmailError) Permanent() bool {
	switch e.Code {
	case ErrCodePermanentEmailFailure, ErrCodeInvalidTemplate, ErrCodeTemplateRenderFailed:
		return true
	}
	return false
}

// NewEmailError creates a new EmailError with the given code and message.
func NewEmailError(code EmailErrorCode, message string, err error) *EmailError {
	return &EmailError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
