package auth

import "time"

// ApiKey is the persisted identity record. The raw key value is never
// stored in plaintext: key_hash supports lookup+verify, ciphertext
// supports administrator recovery on rotation/display.
type ApiKey struct {
	ID         string
	Name       string
	KeyHash    string
	Ciphertext []byte
	Active     bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// rawKeyPrefix is prepended to every generated raw key.
const rawKeyPrefix = "mcp_"
