package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashAdminKey hashes a plaintext admin key with bcrypt. The hash, not the
// key, is what lands in config.
func HashAdminKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	return string(bytes), err
}

// CheckAdminKey compares a presented admin key against a bcrypt hash.
func CheckAdminKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
