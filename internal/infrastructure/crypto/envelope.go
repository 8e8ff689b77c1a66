package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/corsair/backend/internal/domain/shared"
)

// KeySize is the owner key length in bytes (AES-256).
const KeySize = 32

// EnvelopeCipher seals identity material under a caller-supplied key using
// AES-256-GCM. Blobs are nonce|ciphertext; the key itself is never stored.
type EnvelopeCipher struct{}

// NewEnvelopeCipher creates an envelope cipher
func NewEnvelopeCipher() *EnvelopeCipher {
	return &EnvelopeCipher{}
}

// Encrypt returns nonce|ciphertext using AES-256-GCM
func (c *EnvelopeCipher) Encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, shared.NewUpstreamError("RANDOM_FAILED", "Failed to read random nonce")
	}
	out := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, out...), nil
}

// Decrypt expects nonce|ciphertext. A wrong key or a tampered blob yields a
// Security error; the underlying GCM failure is never exposed.
func (c *EnvelopeCipher) Decrypt(blob, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	ns := gcm.NonceSize()
	if len(blob) < ns {
		return nil, shared.NewSecurityError("DECRYPT_FAILED", "Encrypted blob is too short")
	}
	plaintext, err := gcm.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return nil, shared.NewSecurityError("DECRYPT_FAILED", "Failed to decrypt with the provided key")
	}
	return plaintext, nil
}

// Fingerprint returns the hex SHA-256 digest of the key. Only the
// fingerprint is ever persisted.
func (c *EnvelopeCipher) Fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, shared.NewSecurityError("INVALID_KEY", "Owner key must be 32 bytes (AES-256)")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, shared.NewSecurityError("INVALID_KEY", "Owner key is not usable")
	}
	return cipher.NewGCM(block)
}

// GenerateKey creates a fresh random owner key
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, shared.NewUpstreamError("RANDOM_FAILED", "Failed to generate key material")
	}
	return key, nil
}

// DeriveSubkey derives a purpose-bound subkey from the configured master
// material via HKDF-SHA256. Distinct purposes never share a raw key; the
// alias-naming subkey in particular stays stable across expeditions so an
// identity keeps its alias.
func DeriveSubkey(master []byte, purpose string) ([]byte, error) {
	if len(master) < KeySize {
		return nil, shared.NewSecurityError("INVALID_KEY", "Master key material must be at least 32 bytes")
	}
	r := hkdf.New(sha256.New, master, nil, []byte(purpose))
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, shared.NewUpstreamError("DERIVE_FAILED", "Failed to derive subkey")
	}
	return out, nil
}

// ParseKeyHex decodes a hex-encoded owner key as carried in request headers
func ParseKeyHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil || len(key) != KeySize {
		return nil, shared.NewSecurityError("INVALID_KEY", "Owner key must be 64 hex characters")
	}
	return key, nil
}

// EncodeKeyHex encodes an owner key for the one-time response at creation
func EncodeKeyHex(key []byte) string {
	return hex.EncodeToString(key)
}

// FingerprintMatches compares a key fingerprint against the stored one in
// constant time.
func FingerprintMatches(fingerprint, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(fingerprint), []byte(stored)) == 1
}
