// Package ids provides the content-addressed identifiers used throughout
// the circuit engine: Xtx ids, side-effect ids, and gateway ids are all
// hashes (or, for gateways, short fixed-width codes) over canonical byte
// encodings.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// IDLen is the width, in bytes, of an Id.
const IDLen = 32

// Id is a 32-byte content-addressed identifier, produced by hashing the
// canonical binary encoding of the identified object. Two objects that
// encode identically hash to the same Id across all participants.
type Id [IDLen]byte

// Empty is the zero-value Id, used as a sentinel for "no id".
var Empty = Id{}

func (id Id) String() string {
	return hex.EncodeToString(id[:])
}

// IsEmpty reports whether id is the zero Id.
func (id Id) IsEmpty() bool {
	return id == Empty
}

// FromHex parses a hex-encoded 32-byte id.
func FromHex(s string) (Id, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Id{}, err
	}
	if len(b) != IDLen {
		return Id{}, errors.New("ids: wrong id length")
	}
	var id Id
	copy(id[:], b)
	return id, nil
}

// Hasher computes a content id from an arbitrary byte encoding. It is
// pluggable so that a host can swap in a different hash algorithm without
// touching the engine (spec.md §4.A: "All ids are produced by a pluggable
// hash over the canonical binary encoding").
type Hasher interface {
	Hash(encoded []byte) Id
}

// Sha256Hasher is the default Hasher, used unless a host supplies another.
type Sha256Hasher struct{}

func (Sha256Hasher) Hash(encoded []byte) Id {
	return Id(sha256.Sum256(encoded))
}

// DefaultHasher is shared by callers that don't need a distinct instance.
var DefaultHasher Hasher = Sha256Hasher{}

// HashWithSalt mixes an extra salt (e.g. a step index) into the hash input
// so that repeating the same encoding under a different salt yields a
// distinct id — used for step-side-effect ids (spec.md §4.A).
func HashWithSalt(h Hasher, encoded []byte, salt []byte) Id {
	buf := make([]byte, 0, len(encoded)+len(salt))
	buf = append(buf, encoded...)
	buf = append(buf, salt...)
	return h.Hash(buf)
}

// GatewayId is the 4-byte target-chain identifier (spec.md §3).
type GatewayId [4]byte

func (g GatewayId) String() string {
	return string(g[:])
}
