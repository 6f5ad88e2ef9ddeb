package server

import "golang.org/x/crypto/bcrypt"

// checkBcrypt reports whether password matches hash, produced ahead of
// time by cmd/ircpasswd. A malformed hash (e.g. an empty configuration
// value) is treated as a non-match rather than an error.
func checkBcrypt(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
