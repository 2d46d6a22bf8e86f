package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/l3auth/core"
	"github.com/layer-3/l3auth/ports"
)

const (
	// DefaultNonceTTL bounds how long an unissued nonce survives in the store.
	DefaultNonceTTL = 5 * time.Minute
	// DefaultNonceMaxAge bounds message freshness independently of the store
	// TTL, so a generous TTL cannot extend the login window.
	DefaultNonceMaxAge = 5 * time.Minute
)

// NonceManagerOptions override the nonce windows. Zero values mean defaults.
type NonceManagerOptions struct {
	TTL    time.Duration
	MaxAge time.Duration
}

// NonceManager issues and consumes single-use, time-bounded nonces.
type NonceManager struct {
	store  ports.Store
	ttl    time.Duration
	maxAge time.Duration
	now    func() time.Time
}

// NewNonceManager creates a nonce manager backed by store.
func NewNonceManager(store ports.Store, opts NonceManagerOptions) *NonceManager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultNonceMaxAge
	}
	return &NonceManager{
		store:  store,
		ttl:    ttl,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// IssuedNonce is the response to a nonce request.
type IssuedNonce struct {
	Nonce    string `json:"nonce"`
	IssuedAt string `json:"issuedAt"`
}

// Create issues a fresh nonce and stores its record with the nonce TTL.
func (m *NonceManager) Create(ctx context.Context) (IssuedNonce, error) {
	nonce := newOpaqueToken()
	issuedAt := core.Timestamp(m.now())

	payload, err := json.Marshal(core.NonceRecord{IssuedAt: issuedAt, Used: 0})
	if err != nil {
		return IssuedNonce{}, fmt.Errorf("marshal nonce record: %w", err)
	}
	if err := m.store.Set(ctx, nonce, payload, m.ttl); err != nil {
		return IssuedNonce{}, fmt.Errorf("store nonce: %w", err)
	}

	return IssuedNonce{Nonce: nonce, IssuedAt: issuedAt}, nil
}

// Consume spends nonce, returning its pre-consumption record. A nonce can be
// the basis of at most one successful login: the used flag is flipped with a
// compare-and-swap against the exact record that was read, so concurrent
// consumers cannot both observe it unused and both win.
func (m *NonceManager) Consume(ctx context.Context, nonce string) (core.NonceRecord, error) {
	raw, err := m.store.Get(ctx, nonce)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return core.NonceRecord{}, core.ErrNonceNotFound
		}
		return core.NonceRecord{}, fmt.Errorf("fetch nonce: %w", err)
	}

	var record core.NonceRecord
	if err := json.Unmarshal(raw, &record); err != nil || record.IssuedAt == "" {
		_ = m.store.Delete(ctx, nonce)
		return core.NonceRecord{}, core.ErrInvalidNonceMetadata
	}

	issuedAt, err := core.ParseTimestamp(record.IssuedAt)
	if err != nil {
		_ = m.store.Delete(ctx, nonce)
		return core.NonceRecord{}, core.ErrInvalidNonceMetadata
	}

	if m.now().Sub(issuedAt) > m.maxAge {
		_ = m.store.Delete(ctx, nonce)
		return core.NonceRecord{}, core.ErrNonceExpired
	}

	if record.Used == 1 {
		return core.NonceRecord{}, core.ErrNonceAlreadyUsed
	}

	used := record
	used.Used = 1
	updated, err := json.Marshal(used)
	if err != nil {
		return core.NonceRecord{}, fmt.Errorf("marshal nonce record: %w", err)
	}

	swapped, err := m.store.CompareAndSwap(ctx, nonce, raw, updated, m.ttl)
	if err != nil {
		return core.NonceRecord{}, fmt.Errorf("mark nonce used: %w", err)
	}
	if !swapped {
		// A concurrent consumer got there first.
		return core.NonceRecord{}, core.ErrNonceAlreadyUsed
	}

	return record, nil
}

// Verify is a non-mutating status probe for diagnostics.
func (m *NonceManager) Verify(ctx context.Context, nonce string) (core.NonceStatus, error) {
	raw, err := m.store.Get(ctx, nonce)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return core.NonceStatus{Exists: false, Used: 0}, nil
		}
		return core.NonceStatus{}, fmt.Errorf("fetch nonce: %w", err)
	}

	var record core.NonceRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return core.NonceStatus{Exists: false, Used: 0}, nil
	}
	return core.NonceStatus{Exists: true, Used: record.Used}, nil
}

// newOpaqueToken returns a high-entropy opaque identifier. UUIDv4 stripped of
// dashes keeps tokens cookie- and header-safe.
func newOpaqueToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
