package service

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/layer-3/l3auth/core"
	"github.com/layer-3/l3auth/internal/eth"
)

// SignatureVerifier checks that signature over message was produced by the
// identity's address. Implementations fail closed: any parsing or
// cryptographic error means false, never a distinct error kind.
type SignatureVerifier interface {
	Verify(identity core.AuthIdentity, message, signature string) bool
}

// VerifierRegistry dispatches signature verification by CAIP-2 namespace.
// Namespaces without a registered verifier always fail; this is the seam for
// adding chains beyond eip155.
type VerifierRegistry struct {
	verifiers map[string]SignatureVerifier
}

// NewVerifierRegistry creates a registry with the eip155 verifier installed.
func NewVerifierRegistry() *VerifierRegistry {
	r := &VerifierRegistry{verifiers: make(map[string]SignatureVerifier)}
	r.Register(core.NamespaceEIP155, EIP155Verifier{})
	return r
}

// Register installs v for namespace, replacing any previous verifier.
func (r *VerifierRegistry) Register(namespace string, v SignatureVerifier) {
	r.verifiers[namespace] = v
}

// Verify dispatches to the verifier registered for the identity's namespace.
func (r *VerifierRegistry) Verify(identity core.AuthIdentity, message, signature string) bool {
	v, ok := r.verifiers[identity.Namespace]
	if !ok {
		return false
	}
	return v.Verify(identity, message, signature)
}

// EIP155Verifier verifies eth_personal_sign signatures by recovering the
// signer and comparing it to the identity's address.
type EIP155Verifier struct{}

// Verify reports whether signature over message recovers to the identity's
// address. The comparison is case-insensitive via the canonical address form.
func (EIP155Verifier) Verify(identity core.AuthIdentity, message, signature string) bool {
	if !core.IsEIP155Address(identity.Address) {
		return false
	}

	expected := common.HexToAddress(identity.Address)
	ok, err := eth.VerifySignatureAgainstAddress([]byte(message), signature, expected)
	if err != nil {
		return false
	}
	return ok
}
