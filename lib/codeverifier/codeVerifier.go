package codeverifier

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/oauth2"
)

const (
	MethodS256 = "S256"

	// 32 random bytes in hex: 64 characters, well within the 43-128 of RFC 7636
	verifierByteCount = 32
)

type Verifier struct {
	Value string
}

func NewVerifierFrom(hexdata string) *Verifier {
	return &Verifier{
		Value: hexdata,
	}
}

func (v *Verifier) GetValue() string {
	return v.Value
}

// CreateChallenge returns the challenge method and the BASE64URL(SHA256(verifier)) challenge.
func (v *Verifier) CreateChallenge() (string, string) {
	return MethodS256, oauth2.S256ChallengeFromVerifier(v.Value)
}

type Generator interface {
	NewVerifier() (*Verifier, error)
}

type randomGenerator struct {
	random io.Reader
}

func NewGenerator() Generator {
	return NewGeneratorFromReader(rand.Reader)
}

// NewGeneratorFromReader allows tests to inject a deterministic or failing source of randomness.
func NewGeneratorFromReader(random io.Reader) Generator {
	return &randomGenerator{
		random: random,
	}
}

func (g randomGenerator) NewVerifier() (*Verifier, error) {
	value, err := randomBytesInHex(g.random, verifierByteCount)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		Value: value,
	}, nil
}

func randomBytesInHex(random io.Reader, count int) (string, error) {
	buf := make([]byte, count)

	_, err := io.ReadFull(random, buf)
	if err != nil {
		return "", fmt.Errorf("could not generate %d verifier bytes: %w", count, err)
	}

	return hex.EncodeToString(buf), nil
}
