package services

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")

	// ErrAlreadyFinished guards the terminal states: submitted, saved and
	// disqualified sessions accept no further mutations.
	ErrAlreadyFinished = errors.New("questionnaire already finished")

	// ErrNotRegistered is returned when questionnaire operations are
	// attempted before guest registration succeeded.
	ErrNotRegistered = errors.New("guest registration has not completed")

	// ErrSubmitNotAtEnd rejects Submit from anywhere but the last visible
	// question.
	ErrSubmitNotAtEnd = errors.New("submit is only available on the last question")

	// ErrOperationInFlight is returned when a second registration, save or
	// submit races an in-flight one for the same token.
	ErrOperationInFlight = errors.New("another request for this session is in flight")
)

// FieldValidationError carries client-side validation failures; the flow
// stays editable and the caller surfaces the messages in place.
type FieldValidationError struct {
	Fields map[string]string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d fields", len(e.Fields))
}

// RegistrationRejectedError carries the user-facing message derived from an
// upstream 422 on guest registration. The form remains editable.
type RegistrationRejectedError struct {
	Message string
}

func (e *RegistrationRejectedError) Error() string {
	return e.Message
}
