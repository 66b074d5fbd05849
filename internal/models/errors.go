package models

import "errors"

// ErrorKind classifies a ReferralError so transport code can pick a status
// without parsing messages.
type ErrorKind int

const (
	// KindValidation means caller-supplied fields failed a shape rule.
	KindValidation ErrorKind = iota
	// KindUnauthorized means the caller does not own the target record.
	KindUnauthorized
	// KindNotFound means the referenced record does not exist.
	KindNotFound
	// KindUnavailable stands in for any unexpected infrastructure failure;
	// the original cause is logged, never surfaced.
	KindUnavailable
)

// ReferralError is the portal's domain error. Message is user-facing and
// surfaces verbatim; anything that is not a ReferralError never reaches the
// caller with its original text.
type ReferralError struct {
	Kind    ErrorKind
	Message string
}

func (e *ReferralError) Error() string {
	return e.Message
}

// NewValidationError builds a validation-kind domain error.
func NewValidationError(message string) *ReferralError {
	return &ReferralError{Kind: KindValidation, Message: message}
}

// NewUnauthorizedError builds an ownership-failure domain error.
func NewUnauthorizedError(message string) *ReferralError {
	return &ReferralError{Kind: KindUnauthorized, Message: message}
}

// NewNotFoundError builds a missing-record domain error.
func NewNotFoundError(message string) *ReferralError {
	return &ReferralError{Kind: KindNotFound, Message: message}
}

// NewUnavailableError builds the generic infrastructure-failure error.
func NewUnavailableError(message string) *ReferralError {
	return &ReferralError{Kind: KindUnavailable, Message: message}
}

// AsReferralError unwraps err into a ReferralError if it is one.
func AsReferralError(err error) (*ReferralError, bool) {
	var re *ReferralError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
