package auth

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"

	"golang.org/x/crypto/bcrypt"
)

const (
	// JoinCodeLength is the number of characters in a generated join code.
	JoinCodeLength = 6
	// JoinCodeChars excludes ambiguous characters (0/O, 1/I/L).
	JoinCodeChars = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// GenerateJoinCode creates a random join code for private rooms.
func GenerateJoinCode() string {
	code := make([]byte, JoinCodeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(JoinCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = JoinCodeChars[rand.Intn(len(JoinCodeChars))]
			continue
		}
		code[i] = JoinCodeChars[n.Int64()]
	}
	return string(code)
}

// HashJoinCode returns a bcrypt hash of the code for storage.
func HashJoinCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyJoinCode reports whether code matches the stored hash.
func VerifyJoinCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
