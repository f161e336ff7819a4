package filterlist

import "github.com/cespare/xxhash/v2"

// hash32 is the table-key hash used throughout the index: any stable
// non-cryptographic 32-bit hash will do, so this truncates xxhash's 64-bit
// digest rather than carrying a second hash implementation.
func hash32(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}
