// Package token produces the opaque one-time tokens used for email
// verification and password reset links.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Size is the number of random bytes in a token (256 bits).
const Size = 32

// Generator produces opaque, unguessable tokens.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator reads Size bytes from a cryptographically secure source
// and renders them as lowercase hex (64 characters).
type RandomGenerator struct {
	// Source defaults to crypto/rand.Reader.
	Source io.Reader
}

// NewRandomGenerator returns a generator backed by crypto/rand.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{Source: rand.Reader}
}

// Generate implements Generator.
func (g *RandomGenerator) Generate() (string, error) {
	src := g.Source
	if src == nil {
		src = rand.Reader
	}

	b := make([]byte, Size)
	if _, err := io.ReadFull(src, b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate() (string, error) {
	return f()
}
