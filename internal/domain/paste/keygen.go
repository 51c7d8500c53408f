package paste

import (
	"crypto/rand"
	"io"
)

const (
	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultKeyLength is used when a caller asks for a non-positive length.
	DefaultKeyLength = 8
	// MaxKeyLength matches the width of the key column.
	MaxKeyLength = 20
)

// KeyGenerator produces random paste keys.
type KeyGenerator interface {
	Generate(length int) (string, error)
}

// RandomKeyGenerator draws keys uniformly from [A-Za-z0-9].
type RandomKeyGenerator struct {
	reader io.Reader
}

// NewKeyGenerator returns a generator backed by crypto/rand.
func NewKeyGenerator() *RandomKeyGenerator {
	return &RandomKeyGenerator{reader: rand.Reader}
}

// Generate returns a key of the given length.
func (g *RandomKeyGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultKeyLength
	}
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2)
	for len(out) < length {
		if _, err := io.ReadFull(g.reader, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// Mask to 6 bits and reject 62 and 63 so every symbol stays equally likely.
			idx := int(b & 0x3f)
			if idx >= len(keyAlphabet) {
				continue
			}
			out = append(out, keyAlphabet[idx])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// ValidKey reports whether key could have been produced by a generator.
func ValidKey(key string) bool {
	if key == "" || len(key) > MaxKeyLength {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

var _ KeyGenerator = (*RandomKeyGenerator)(nil)
