package core

// L3Session is the server-side session created on successful login. It is
// immutable once stored; expiry is enforced by the store's TTL.
type L3Session struct {
	Identity  AuthIdentity `json:"identity"`
	IssuedAt  string       `json:"issuedAt"`
	ExpiresAt string       `json:"expiresAt"`
}

// SessionContext pairs a session with the opaque token it is stored under.
// It is rebuilt from the store on every authenticated request and never
// cached beyond it.
type SessionContext struct {
	Token   string
	Session L3Session
}
