package core

// NonceRecord is the stored state of an issued nonce. Used flips from 0 to 1
// exactly once, on successful consumption.
type NonceRecord struct {
	IssuedAt string `json:"issuedAt"`
	Used     int    `json:"used"`
}

// NonceStatus is a non-mutating view of a nonce, for diagnostics.
type NonceStatus struct {
	Exists bool `json:"exists"`
	Used   int  `json:"used"`
}
