package model

import (
	"fmt"
	"unicode/utf16"
)

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

// FingerprintHex computes the 32-bit FNV-1a hash of the string's UTF-16
// code units and renders it as exactly 8 lowercase hex digits.
//
// Hashing code units rather than bytes keeps ids stable against the
// reference exporter's output for the same field tuples. This is a fast,
// collision-tolerant fingerprint, not a cryptographic hash.
func FingerprintHex(s string) string {
	h := fnvOffset32
	for _, unit := range utf16.Encode([]rune(s)) {
		h ^= uint32(unit)
		h *= fnvPrime32
	}
	return fmt.Sprintf("%08x", h)
}
