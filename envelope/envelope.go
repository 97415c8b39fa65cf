// Package envelope implements the symmetric envelope encryption used for
// dataset payloads stored on the ledger, plus the deterministic hashing used
// to derive contract identifiers.
//
// AES-256-CTR with a fresh 16-byte IV per encryption, IV prepended to the
// ciphertext. The cipher key is the first 32 bytes of the base64 SHA-256
// digest of the input key, which keeps ciphertexts interchangeable with
// earlier deployments. CTR provides no authentication: decrypting with the
// wrong key yields garbage without error.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const ivSize = 16

// GenerateKey returns a fresh 256-bit key, hex encoded.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// Encrypt encrypts plaintext under key and returns IV || ciphertext.
func Encrypt(key string, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(cipherKey(key))
	if err != nil {
		return nil, err
	}
	out := make([]byte, ivSize+len(plaintext))
	iv := out[:ivSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	cipher.NewCTR(block, iv).XORKeyStream(out[ivSize:], plaintext)
	return out, nil
}

// Decrypt splits the leading IV off blob and decrypts the remainder.
func Decrypt(key string, blob []byte) ([]byte, error) {
	if len(blob) < ivSize {
		return nil, fmt.Errorf("envelope: blob too short (%d bytes)", len(blob))
	}
	block, err := aes.NewCipher(cipherKey(key))
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(blob)-ivSize)
	cipher.NewCTR(block, blob[:ivSize]).XORKeyStream(plaintext, blob[ivSize:])
	return plaintext, nil
}

// Hash returns the hex-encoded SHA-256 digest of value.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func cipherKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return []byte(base64.StdEncoding.EncodeToString(sum[:])[:32])
}
