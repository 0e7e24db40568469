package krypto

import "github.com/awnumar/memguard"

// Wipe overwrites sensitive byte slices in place.
func Wipe(bufs ...[]byte) {
	for _, b := range bufs {
		if len(b) > 0 {
			memguard.WipeBytes(b)
		}
	}
}
