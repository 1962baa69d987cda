package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	productIDPrefix = "prod_"
)

var productIDPattern = regexp.MustCompile(`^prod_[a-zA-Z0-9]{24}$`)

// NewProductID generates a new product ID with the "prod_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewProductID() string {
	return productIDPrefix + randomAlphanumeric(idLength)
}

// ValidateProductID reports whether id has the shape produced by NewProductID.
// Stores accept any non-empty ID so that imported records keep their keys.
func ValidateProductID(id string) bool {
	return productIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
