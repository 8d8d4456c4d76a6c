// Package cache adds content-addressed result caching on top of zipsift.
//
// This package is an optional layer over the core scanner, useful when the
// same archive buffers come around repeatedly: retried webhook deliveries,
// polled artifact endpoints, fan-out to multiple consumers.
//
// Keys are SHA-256 digests of the raw input buffer, so a hit means the
// exact same bytes were scanned before and the recorded results can be
// replayed without touching a decompressor.
package cache

import (
	"github.com/opencontainers/go-digest"

	"github.com/meigma/zipsift"
)

// Store holds extraction results keyed by input-buffer digest.
//
// Because a key covers the whole raw buffer, stores never confuse archives
// that merely share entries. A store must not be shared between extractors
// configured differently: the key says nothing about selection or decoding
// options.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the results recorded for key.
	// Returns nil, false when the buffer has not been seen.
	Get(key digest.Digest) ([]zipsift.Result, bool)

	// Put records the results for key.
	Put(key digest.Digest, results []zipsift.Result) error
}
