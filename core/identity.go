package core

import (
	"regexp"
	"strings"
)

// NamespaceEIP155 is the only namespace with a registered signature scheme.
const NamespaceEIP155 = "eip155"

var (
	namespaceRegexp     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	chainIDRegexp       = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	eip155AddressRegexp = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// AuthIdentity is a CAIP-10 style chain account. Account is the composite
// "namespace:chainId:address" identifier; Namespace selects the verification
// scheme.
type AuthIdentity struct {
	Account   string `json:"account"`
	Namespace string `json:"namespace"`
	ChainID   string `json:"chainId"`
	Address   string `json:"address"`
}

// NormalizeIdentity validates identity against the CAIP shape rules and
// returns its canonical form, with Account rebuilt from the normalized parts.
// Normalization is idempotent.
func NormalizeIdentity(identity AuthIdentity) (AuthIdentity, error) {
	account := strings.TrimSpace(identity.Account)
	namespace := strings.TrimSpace(identity.Namespace)
	chainID := strings.TrimSpace(identity.ChainID)
	address := strings.TrimSpace(identity.Address)

	if account == "" || namespace == "" || chainID == "" || address == "" {
		return AuthIdentity{}, ErrIdentityEmptyField
	}
	if !namespaceRegexp.MatchString(namespace) {
		return AuthIdentity{}, ErrIdentityInvalidNamespace
	}
	if !chainIDRegexp.MatchString(chainID) {
		return AuthIdentity{}, ErrIdentityInvalidChainID
	}

	parts := strings.Split(account, ":")
	if len(parts) != 3 {
		return AuthIdentity{}, ErrIdentityInvalidAccount
	}
	accountNamespace := strings.TrimSpace(parts[0])
	accountChainID := strings.TrimSpace(parts[1])
	accountAddress := strings.TrimSpace(parts[2])

	if accountNamespace != namespace {
		return AuthIdentity{}, ErrIdentityNamespaceMismatch
	}
	if accountChainID != chainID {
		return AuthIdentity{}, ErrIdentityChainIDMismatch
	}

	normalizedAddress, err := normalizeAddress(namespace, address)
	if err != nil {
		return AuthIdentity{}, err
	}
	normalizedAccountAddress, err := normalizeAddress(namespace, accountAddress)
	if err != nil {
		return AuthIdentity{}, err
	}
	if normalizedAddress != normalizedAccountAddress {
		return AuthIdentity{}, ErrIdentityAddressMismatch
	}

	return AuthIdentity{
		Account:   namespace + ":" + chainID + ":" + normalizedAddress,
		Namespace: namespace,
		ChainID:   chainID,
		Address:   normalizedAddress,
	}, nil
}

// IsEIP155Address reports whether value is a 20-byte hex Ethereum address.
func IsEIP155Address(value string) bool {
	return eip155AddressRegexp.MatchString(value)
}

func normalizeAddress(namespace, address string) (string, error) {
	switch namespace {
	case NamespaceEIP155:
		if !IsEIP155Address(address) {
			return "", ErrIdentityInvalidAddress
		}
		return strings.ToLower(address), nil
	default:
		// Unknown namespaces only require a non-empty address; their
		// verifiers decide the rest once one is registered.
		if address == "" {
			return "", ErrIdentityMissingAddress
		}
		return address, nil
	}
}
