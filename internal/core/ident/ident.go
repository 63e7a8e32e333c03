// Package ident generates and validates the 24-hex document ids used by
// every persisted entity. The layout follows the classic object-id shape:
// a 4-byte big-endian unix timestamp followed by 8 random bytes, so ids
// sort roughly by creation time while staying unguessable
package ident

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Size is the length of an id in hex characters
const Size = 24

// New returns a fresh 24-hex id
func New() string {
	return NewAt(time.Now())
}

// NewAt returns an id stamped with the given time
// split out so tests can pin the timestamp half
func NewAt(t time.Time) string {
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[:4], uint32(t.Unix()))
	if _, err := rand.Read(raw[4:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic("ident: rand.Read: " + err.Error())
	}
	return hex.EncodeToString(raw[:])
}

// IsID reports whether s is a well formed 24-hex id
func IsID(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Time extracts the embedded creation time from an id
// returns the zero time when the id is malformed
func Time(s string) time.Time {
	if !IsID(s) {
		return time.Time{}
	}
	raw, err := hex.DecodeString(s[:8])
	if err != nil {
		return time.Time{}
	}
	return time.Unix(int64(binary.BigEndian.Uint32(raw)), 0)
}
