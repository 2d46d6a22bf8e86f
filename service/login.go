package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/layer-3/l3auth/core"
	"github.com/layer-3/l3auth/ports"
)

// AuthService orchestrates the login protocol: identity normalization, nonce
// consumption, canonical message reconstruction, and signature verification,
// then session issuance.
type AuthService struct {
	nonces   *NonceManager
	sessions *SessionManager
	verifier SignatureVerifier
	events   ports.EventPublisher
	logger   *slog.Logger
}

// NewAuthService creates the auth orchestrator. events may be nil when no
// event stream is wired; logger defaults to slog.Default.
func NewAuthService(
	nonces *NonceManager,
	sessions *SessionManager,
	verifier SignatureVerifier,
	events ports.EventPublisher,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		nonces:   nonces,
		sessions: sessions,
		verifier: verifier,
		events:   events,
		logger:   logger,
	}
}

// LoginRequest is the body of a login attempt.
type LoginRequest struct {
	Identity  core.AuthIdentity `json:"identity" binding:"required"`
	Message   string            `json:"message" binding:"required"`
	Signature string            `json:"signature" binding:"required"`
	Nonce     string            `json:"nonce" binding:"required"`
	IssuedAt  string            `json:"issuedAt" binding:"required"`
}

// Sessions exposes the session manager for transport middleware.
func (s *AuthService) Sessions() *SessionManager {
	return s.sessions
}

// CreateNonce issues a nonce for a future login attempt.
func (s *AuthService) CreateNonce(ctx context.Context) (IssuedNonce, error) {
	return s.nonces.Create(ctx)
}

// VerifyNonce reports a nonce's status without consuming it.
func (s *AuthService) VerifyNonce(ctx context.Context, nonce string) (core.NonceStatus, error) {
	return s.nonces.Verify(ctx, nonce)
}

// Login authenticates a wallet-signed request against domain and opens a
// session on success. Failures are the enumerated core errors; all of them
// except internal nonce-metadata corruption are logged as security events
// with the account and reason, never with the signature or message body.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, domain string) (core.SessionContext, error) {
	identity, err := core.NormalizeIdentity(req.Identity)
	if err != nil {
		s.logFailure(req.Identity.Account, err)
		return core.SessionContext{}, err
	}

	if _, err := s.verify(ctx, identity, req, domain); err != nil {
		s.logFailure(identity.Account, err)
		return core.SessionContext{}, err
	}

	sessionCtx, err := s.sessions.CreateSession(ctx, identity)
	if err != nil {
		return core.SessionContext{}, err
	}

	s.logger.Info("login_success", "account", identity.Account)
	if s.events != nil {
		if err := s.events.PublishLogin(ctx, identity.Account); err != nil {
			s.logger.Warn("failed to publish login event", "error", err)
		}
	}

	return sessionCtx, nil
}

// Logout invalidates the session. It is idempotent: invalidating an already
// absent session still succeeds.
func (s *AuthService) Logout(ctx context.Context, sessionCtx core.SessionContext) error {
	if err := s.sessions.InvalidateSession(ctx, sessionCtx.Token); err != nil {
		return err
	}

	account := sessionCtx.Session.Identity.Account
	s.logger.Info("logout", "account", account)
	if s.events != nil {
		if err := s.events.PublishLogout(ctx, account); err != nil {
			s.logger.Warn("failed to publish logout event", "error", err)
		}
	}
	return nil
}

// verify runs the L1 stages in order, each a potential exit point, and
// returns the consumed nonce record on success. The canonical message is
// rebuilt server-side so no field can diverge between what the client signed
// and what the server attributes as the authenticated claim.
func (s *AuthService) verify(ctx context.Context, identity core.AuthIdentity, req LoginRequest, domain string) (core.NonceRecord, error) {
	record, err := s.nonces.Consume(ctx, req.Nonce)
	if err != nil {
		return core.NonceRecord{}, err
	}

	// Binding the signed message to the stored issuance instant stops
	// issuedAt substitution with an otherwise valid nonce.
	if req.IssuedAt != record.IssuedAt {
		return core.NonceRecord{}, core.ErrIssuedAtMismatch
	}

	expected := core.BuildLoginMessage(core.LoginMessageParams{
		Identity: identity,
		Nonce:    req.Nonce,
		IssuedAt: record.IssuedAt,
		Domain:   domain,
	})
	if req.Message != expected {
		return core.NonceRecord{}, core.ErrMessageMismatch
	}

	if !s.verifier.Verify(identity, req.Message, req.Signature) {
		return core.NonceRecord{}, core.ErrSignatureVerificationFailed
	}

	return record, nil
}

// logFailure records a failed login as a security event. Nonce-metadata
// corruption is a server-data anomaly, not an attacker probe, and is logged
// separately.
func (s *AuthService) logFailure(account string, err error) {
	if errors.Is(err, core.ErrInvalidNonceMetadata) {
		s.logger.Error("nonce_metadata_corrupt", "account", account)
		return
	}
	s.logger.Warn("login_failure", "account", account, "reason", failureReason(err))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrNonceNotFound):
		return "nonce_not_found"
	case errors.Is(err, core.ErrNonceAlreadyUsed):
		return "nonce_already_used"
	case errors.Is(err, core.ErrNonceExpired):
		return "nonce_expired"
	case errors.Is(err, core.ErrInvalidNonceMetadata):
		return "invalid_nonce_metadata"
	case errors.Is(err, core.ErrIssuedAtMismatch):
		return "issued_at_mismatch"
	case errors.Is(err, core.ErrMessageMismatch):
		return "message_mismatch"
	case errors.Is(err, core.ErrSignatureVerificationFailed):
		return "signature_verification_failed"
	}

	var authErr *core.AuthError
	if errors.As(err, &authErr) {
		return "invalid_identity"
	}
	return "internal_error"
}
