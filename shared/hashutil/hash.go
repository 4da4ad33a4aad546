// Package hashutil includes all the hash functions used across the protocol.
package hashutil

import (
	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/sha3"
)

// Hash defines a function that returns the sha256 checksum of the data passed in.
// This is the canonical protocol hash; seeds, index roots and attestation keys
// must all be produced with it to stay compatible with other clients.
func Hash(data []byte) [32]byte {
	var hash [32]byte
	h := sha256.New()
	// The hash interface never returns an error, for that reason
	// we are not handling the error below. For reference, it is
	// stated here https://golang.org/pkg/hash/#Hash
	// #nosec G104
	h.Write(data)
	h.Sum(hash[:0])
	return hash
}

// CustomSHA256Hasher returns a hash function that uses
// an enclosed hasher. This is not safe for concurrent
// use as the same hasher is being called throughout.
func CustomSHA256Hasher() func([]byte) [32]byte {
	hasher := sha256.New()
	var hash [32]byte
	return func(data []byte) [32]byte {
		// #nosec G104
		hasher.Write(data)
		hasher.Sum(hash[:0])
		hasher.Reset()
		return hash
	}
}

// HashKeccak256 defines a function which returns the Keccak-256/SHA3
// hash of the data passed in.
func HashKeccak256(data []byte) [32]byte {
	var hash [32]byte
	h := sha3.NewLegacyKeccak256()
	// #nosec G104
	h.Write(data)
	h.Sum(hash[:0])
	return hash
}
