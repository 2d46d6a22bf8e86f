package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageParams() LoginMessageParams {
	return LoginMessageParams{
		Identity: AuthIdentity{
			Account:   "eip155:1:0xab5801a7d398351b8be11c439e05c5b3259aec9b",
			Namespace: "eip155",
			ChainID:   "1",
			Address:   "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		},
		Nonce:    "4f2a9d0e6b1c48d3a7e05f6b9c2d81f0",
		IssuedAt: "2024-05-01T12:00:00.000Z",
		Domain:   "localhost",
	}
}

func TestBuildLoginMessageLayout(t *testing.T) {
	message := BuildLoginMessage(messageParams())

	expected := "localhost wants you to sign in with your account: eip155:1:0xab5801a7d398351b8be11c439e05c5b3259aec9b\n" +
		"domain: localhost\n" +
		"Version: 1\n" +
		"Chain ID: eip155:1\n" +
		"Nonce: 4f2a9d0e6b1c48d3a7e05f6b9c2d81f0\n" +
		"Issued At: 2024-05-01T12:00:00.000Z"
	assert.Equal(t, expected, message)
}

func TestBuildLoginMessageIsDeterministic(t *testing.T) {
	assert.Equal(t, BuildLoginMessage(messageParams()), BuildLoginMessage(messageParams()))
}

func TestBuildLoginMessageIsSensitiveToEveryField(t *testing.T) {
	base := BuildLoginMessage(messageParams())

	mutations := map[string]func(*LoginMessageParams){
		"account":  func(p *LoginMessageParams) { p.Identity.Account = "eip155:1:0x0000000000000000000000000000000000000001" },
		"chainId":  func(p *LoginMessageParams) { p.Identity.ChainID = "56" },
		"nonce":    func(p *LoginMessageParams) { p.Nonce = "different" },
		"issuedAt": func(p *LoginMessageParams) { p.IssuedAt = "2024-05-01T12:00:01.000Z" },
		"domain":   func(p *LoginMessageParams) { p.Domain = "example.com" },
		"version":  func(p *LoginMessageParams) { p.Version = "2" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			params := messageParams()
			mutate(&params)
			assert.NotEqual(t, base, BuildLoginMessage(params))
		})
	}
}

func TestTimestampFormat(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", Timestamp(at))

	withMillis := time.Date(2024, 5, 1, 12, 0, 0, 123_000_000, time.UTC)
	assert.Equal(t, "2024-05-01T12:00:00.123Z", Timestamp(withMillis))
}

func TestTimestampRoundTrips(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 123_000_000, time.UTC)

	parsed, err := ParseTimestamp(Timestamp(at))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(at))
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := ParseTimestamp("not-a-timestamp")
	assert.Error(t, err)
}
