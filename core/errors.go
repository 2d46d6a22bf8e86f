package core

import "net/http"

// AuthError is a protocol failure with a stable numeric code. Handlers map
// Status onto the HTTP response; Code is the machine-readable error kind.
type AuthError struct {
	Status  int
	Code    int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func badRequest(code int, message string) *AuthError {
	return &AuthError{Status: http.StatusBadRequest, Code: code, Message: message}
}

func unauthorized(code int, message string) *AuthError {
	return &AuthError{Status: http.StatusUnauthorized, Code: code, Message: message}
}

// Identity validation failures, one per rule so clients get an actionable
// message for exactly the field they got wrong.
var (
	ErrIdentityEmptyField        = badRequest(40001, "identity fields must be non-empty")
	ErrIdentityInvalidNamespace  = badRequest(40002, "identity.namespace is not CAIP-2 compliant")
	ErrIdentityInvalidChainID    = badRequest(40003, "identity.chainId is not CAIP-2 compliant")
	ErrIdentityInvalidAccount    = badRequest(40004, "identity.account must be a CAIP-10 identifier")
	ErrIdentityNamespaceMismatch = badRequest(40005, "identity.account namespace mismatch")
	ErrIdentityChainIDMismatch   = badRequest(40006, "identity.account chainId mismatch")
	ErrIdentityAddressMismatch   = badRequest(40007, "identity.account address mismatch")
	ErrIdentityInvalidAddress    = badRequest(40008, "identity.address must be a valid Ethereum address")
	ErrIdentityMissingAddress    = badRequest(40009, "identity.address must be provided")
)

// Login protocol failures.
var (
	ErrIssuedAtMismatch            = badRequest(40011, "login issuedAt mismatch")
	ErrMessageMismatch             = badRequest(40012, "login message mismatch")
	ErrSignatureVerificationFailed = unauthorized(40101, "signature verification failed")
)

// Nonce lifecycle failures.
var (
	ErrNonceNotFound        = badRequest(40020, "invalid or expired nonce")
	ErrNonceAlreadyUsed     = badRequest(40021, "nonce already used")
	ErrInvalidNonceMetadata = badRequest(40022, "invalid nonce metadata")
	ErrNonceExpired         = badRequest(40023, "nonce expired")
)

// Session resolution failures.
var (
	ErrMissingSession          = unauthorized(40110, "missing session")
	ErrInvalidOrExpiredSession = unauthorized(40111, "invalid or expired session")
)
