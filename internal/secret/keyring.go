// Package secret provides reversible at-rest obfuscation for session
// credentials. The plaintext exists only transiently in memory while a
// login is in flight; the obfuscated form is what Session State holds and
// it is never persisted.
//
// This is obfuscation, not cryptography: the key lives for the process
// lifetime, so a restart invalidates every stored credential and the user
// is re-prompted. That property is intentional.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Keyring obfuscates and reveals credential strings with a process-lifetime
// key. Construct one at process start and pass it into the components that
// need it; there is no package-level instance.
type Keyring struct {
	key [sha256.Size]byte
}

// NewKeyring creates a Keyring with a fresh random key.
func NewKeyring() (*Keyring, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to seed keyring: %w", err)
	}
	return NewKeyringFromSeed(seed[:]), nil
}

// NewKeyringFromSeed derives a Keyring deterministically from seed bytes.
// Used by tests that need reproducible obfuscation.
func NewKeyringFromSeed(seed []byte) *Keyring {
	return &Keyring{key: sha256.Sum256(seed)}
}

// Obfuscate returns the base64-encoded XOR of the plaintext against the
// keystream. An empty plaintext maps to an empty string.
func (k *Keyring) Obfuscate(plain string) string {
	if plain == "" {
		return ""
	}
	buf := []byte(plain)
	k.xor(buf)
	return base64.StdEncoding.EncodeToString(buf)
}

// Reveal reverses Obfuscate. Undecodable input (including input obfuscated
// under a previous process's key that happens to decode to garbage) returns
// an empty string rather than an error: a stale credential is equivalent to
// no credential.
func (k *Keyring) Reveal(obfuscated string) string {
	if obfuscated == "" {
		return ""
	}
	buf, err := base64.StdEncoding.DecodeString(obfuscated)
	if err != nil {
		return ""
	}
	k.xor(buf)
	return string(buf)
}

// xor applies the repeating keystream in place.
func (k *Keyring) xor(buf []byte) {
	for i := range buf {
		buf[i] ^= k.key[i%len(k.key)]
	}
}
