package api

import "fmt"

// Backend custom error codes the core has to recognize.
const (
	// CodeAccountNotVerified short-circuits normal login-failure
	// handling: the caller redirects into the verification flow
	// instead of surfacing a generic error.
	CodeAccountNotVerified = 1002
)

// BackendError is the error document the backend returns:
// {"customCode": 1002, "message": "..."}. VerificationToken is present
// only on the not-verified variant.
type BackendError struct {
	CustomCode        int    `json:"customCode"`
	Message           string `json:"message"`
	VerificationToken string `json:"verificationToken,omitempty"`
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.CustomCode, e.Message)
}

// AccountNotVerifiedError is the distinct login outcome for an account
// that exists but has not completed verification. Token and Email feed
// the verification flow.
type AccountNotVerifiedError struct {
	Token string
	Email string
}

func (e *AccountNotVerifiedError) Error() string {
	return fmt.Sprintf("account %s is not verified", e.Email)
}
