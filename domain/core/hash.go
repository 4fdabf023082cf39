package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// UploadHash identifies the raw bytes of a cohort upload. Recorded on every
// assessment so a verdict can always be traced back to the exact file it was
// computed from.
type UploadHash Hash

// NewUploadHash hashes raw upload content
func NewUploadHash(content []byte) UploadHash { return UploadHash(NewHash(content)) }

func (h UploadHash) String() string { return Hash(h).String() }

func (h UploadHash) IsEmpty() bool { return h == "" }
