package core

import (
	"strings"
	"time"
)

// AuthMessageVersion tags the sign-in message format so clients and servers
// can evolve it in lockstep.
const AuthMessageVersion = "1"

// LoginMessageParams are the inputs of the canonical sign-in message. Every
// field is covered by the signature; changing any of them changes the message.
type LoginMessageParams struct {
	Identity AuthIdentity
	Nonce    string
	IssuedAt string
	Domain   string
	// Version defaults to AuthMessageVersion when empty.
	Version string
}

// BuildLoginMessage deterministically renders the line-oriented message the
// wallet is expected to sign verbatim.
func BuildLoginMessage(p LoginMessageParams) string {
	version := p.Version
	if version == "" {
		version = AuthMessageVersion
	}
	chainReference := p.Identity.Namespace + ":" + p.Identity.ChainID

	return strings.Join([]string{
		p.Domain + " wants you to sign in with your account: " + p.Identity.Account,
		"domain: " + p.Domain,
		"Version: " + version,
		"Chain ID: " + chainReference,
		"Nonce: " + p.Nonce,
		"Issued At: " + p.IssuedAt,
	}, "\n")
}

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp renders t as a millisecond-precision UTC ISO-8601 string, the
// format web wallets produce. Protocol timestamp comparisons are plain string
// equality, so every timestamp the service emits goes through here.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
