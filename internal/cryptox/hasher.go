// Package cryptox derives and verifies password digests.
//
// A digest is the standard base64 encoding of salt||key, where key is
// PBKDF2-HMAC-SHA256(password, salt). The salt is random per digest, so
// hashing the same password twice yields different digests.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// Params fixes the derivation cost and sizes of a Hasher.
type Params struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// DefaultParams are the parameters every stored digest was produced with.
var DefaultParams = Params{
	Iterations: 100_000,
	SaltLength: 16,
	KeyLength:  32,
}

// Hasher hashes and verifies passwords with a fixed parameter set.
// It holds no mutable state and is safe for concurrent use.
type Hasher struct {
	params Params
}

// NewHasher returns a Hasher using p.
func NewHasher(p Params) *Hasher {
	return &Hasher{params: p}
}

// NewDefaultHasher returns a Hasher using DefaultParams.
func NewDefaultHasher() *Hasher {
	return NewHasher(DefaultParams)
}

// DigestLength is the decoded size of a digest produced by h.
func (h *Hasher) DigestLength() int {
	return h.params.SaltLength + h.params.KeyLength
}

// Hash derives a fresh digest for password. The empty password is accepted.
// An error is returned only if the system random source fails.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error generating salt: %w", err)
	}

	key := h.derive(password, salt)
	defer common.WipeByteArray(key)

	blob := make([]byte, 0, h.DigestLength())
	blob = append(blob, salt...)
	blob = append(blob, key...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Verify reports whether password matches digest. A digest that is not
// valid base64 or has the wrong length never matches.
func (h *Hasher) Verify(password, digest string) bool {
	salt, want, err := h.split(digest)
	if err != nil {
		return false
	}

	got := h.derive(password, salt)
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1
}

// split decodes digest into its salt and key parts.
func (h *Hasher) split(digest string) (salt, key []byte, err error) {
	blob, err := base64.StdEncoding.DecodeString(digest)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrMalformedDigest, err)
	}
	if len(blob) != h.DigestLength() {
		return nil, nil, fmt.Errorf("%w: length %d", common.ErrMalformedDigest, len(blob))
	}
	return blob[:h.params.SaltLength], blob[h.params.SaltLength:], nil
}

func (h *Hasher) derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, h.params.Iterations, h.params.KeyLength, sha256.New)
}
