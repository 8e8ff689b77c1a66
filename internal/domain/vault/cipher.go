package vault

// Cipher is the envelope-encryption contract the vault depends on.
// Implementations must use authenticated encryption with a unique nonce per
// call so tampering is detectable and identical plaintexts never produce
// identical ciphertexts.
type Cipher interface {
	// Encrypt seals plaintext under key and returns an opaque blob
	Encrypt(plaintext, key []byte) ([]byte, error)
	// Decrypt opens a blob produced by Encrypt with the same key.
	// It must fail on a wrong key or a corrupted blob.
	Decrypt(blob, key []byte) ([]byte, error)
	// Fingerprint returns a stable, non-reversible identifier for a key,
	// suitable for persisting and for constant-time comparison.
	Fingerprint(key []byte) string
}
