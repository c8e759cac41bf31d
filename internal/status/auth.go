package status

import (
	"golang.org/x/crypto/bcrypt"
)

// HashToken bcrypt hash of a status token, for the status_token_hash config key.
func HashToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckToken true if token matches hash. Empty token never matches.
func CheckToken(token, hash string) bool {
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
