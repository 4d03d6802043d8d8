package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// newOrgCode returns a short join token, uppercased for readability.
func newOrgCode() string {
	bytes := make([]byte, 5)
	_, _ = rand.Read(bytes)
	return strings.ToUpper(hex.EncodeToString(bytes))
}
