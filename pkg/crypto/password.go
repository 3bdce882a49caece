package crypto

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt hash of raw, suitable for storage
// as ApiKey.key_hash.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether raw matches hash. bcrypt's comparison is
// constant-time with respect to the candidate password.
func VerifyPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
