// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Domain keys for BLAKE3 keyed hashing: ASCII names zero-padded to 32
// bytes. Changing either invalidates every existing cache entry.
var (
	keyDomain = [32]byte{
		'c', 'r', 'a', 's', 'h', 's', 't', 'a', 't', 's', '.', 'c', 'a', 'c', 'h', 'e',
		'.', 'k', 'e', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	bodyDomain = [32]byte{
		'c', 'r', 'a', 's', 'h', 's', 't', 'a', 't', 's', '.', 'c', 'a', 'c', 'h', 'e',
		'.', 'b', 'o', 'd', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// keyName is the hex file name stem for a cache key.
func keyName(key string) string {
	digest := keyedHash(keyDomain, []byte(key))
	return hex.EncodeToString(digest[:])
}

// checksum is the integrity hash of an uncompressed body.
func checksum(data []byte) []byte {
	digest := keyedHash(bodyDomain, data)
	return digest[:]
}

func keyedHash(key [32]byte, data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		// NewKeyed fails only for keys that are not 32 bytes.
		panic("cache: blake3.NewKeyed: " + err.Error())
	}
	hasher.Write(data)
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}
