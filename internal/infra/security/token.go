package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const defaultTokenSize = 32

// RandomTokenGenerator issues opaque session tokens: Size random bytes, base64url encoded.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = defaultTokenSize
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: read token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
