// Package credential derives and verifies server-side password hashes from
// client pre-hashes.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/frahmantamala/shiftboard/internal/core/common/timestamp"
	"golang.org/x/crypto/pbkdf2"
)

const (
	KeyLength = 32

	// ClientIterations and ClientSaltPrefix define the pre-hash convention
	// used by the bundled tooling.
	ClientIterations = 100_000
	ClientSaltPrefix = "shiftboard:"
)

// Record is a freshly generated salt and hash pair, both base64 encoded.
type Record struct {
	Salt      string
	Hash      string
	CreatedAt string
	UpdatedAt string
}

type Codec struct {
	iterations int
	saltBytes  int
	now        func() time.Time
}

func NewCodec(iterations, saltBytes int) *Codec {
	return &Codec{
		iterations: iterations,
		saltBytes:  saltBytes,
		now:        time.Now,
	}
}

// Derive runs PBKDF2-SHA256 over the client pre-hash.
func (c *Codec) Derive(clientHash string, salt []byte) []byte {
	return pbkdf2.Key([]byte(clientHash), salt, c.iterations, KeyLength, sha256.New)
}

func (c *Codec) NewRecord(clientHash string) (Record, error) {
	salt := make([]byte, c.saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return Record{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	now := timestamp.Format(c.now())
	return Record{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Hash:      base64.StdEncoding.EncodeToString(c.Derive(clientHash, salt)),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Verify reports whether clientHash matches the stored record. Malformed
// records never match.
func (c *Codec) Verify(clientHash, saltB64, hashB64 string) bool {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}

	computed := c.Derive(clientHash, salt)
	if len(computed) != len(stored) {
		return false
	}
	return subtle.ConstantTimeCompare(computed, stored) == 1
}

// ClientPreHash derives the value a client sends as password_client_hash.
func ClientPreHash(username, password string) string {
	key := pbkdf2.Key([]byte(password), []byte(ClientSaltPrefix+username), ClientIterations, KeyLength, sha256.New)
	return hex.EncodeToString(key)
}
