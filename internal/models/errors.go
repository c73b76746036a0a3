package models

import "errors"

// Business rule violations surfaced to the API layer. Handlers map these to
// user-facing error codes; none of them is retryable.
var (
	ErrQuoteNotFound  = errors.New("quote not found")
	ErrCaseNotFound   = errors.New("underwriting case not found")
	ErrPolicyNotFound = errors.New("policy not found")

	ErrAlreadyDecided    = errors.New("underwriting case already decided")
	ErrNoPendingRequest  = errors.New("no pending information request on this case")
	ErrNotEligibleToBind = errors.New("quote is not eligible to bind")
	ErrAlreadyBound      = errors.New("quote is already policied")

	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidAnswer     = errors.New("invalid questionnaire answer")
	ErrNotQuoteOwner     = errors.New("user does not own this quote")
)
