// Package eth wraps the go-ethereum primitives the auth service needs:
// personal-message hashing and signer address recovery.
package eth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// RecoverAddress returns the address that produced signature over message
// under the eth_personal_sign scheme. It accepts both 0/1 and 27/28 recovery
// identifiers.
func RecoverAddress(message, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(signature))
	}

	sig := append([]byte(nil), signature...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignatureAgainstAddress reports whether the hex-encoded signature
// over message was produced by expected.
func VerifySignatureAgainstAddress(message []byte, signatureHex string, expected common.Address) (bool, error) {
	signature, err := hexutil.Decode(signatureHex)
	if err != nil {
		return false, fmt.Errorf("failed to decode signature: %w", err)
	}

	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return false, err
	}
	return recovered == expected, nil
}
