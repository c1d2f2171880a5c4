// Package hash provides the xxHash64 digests used to identify wells and
// checksum series payloads.
package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// WellID returns the xxHash64 of a well name with surrounding whitespace removed.
func WellID(name string) uint64 {
	return xxhash.Sum64String(strings.TrimSpace(name))
}

// Checksum returns the xxHash64 of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
