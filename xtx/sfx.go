package xtx

import (
	"encoding/binary"

	"github.com/t3rn/circuit/ids"
)

// SecurityLvl classifies how much trust a side effect's execution carries
// (spec.md §3, §4.D).
type SecurityLvl uint8

const (
	// Escrowed side effects target a programmable-internal or on-circuit
	// gateway: execution is trusted without an executor bond.
	Escrowed SecurityLvl = iota
	// Optimistic side effects declared an insurance hint: an executor
	// bonds collateral against faithful execution.
	Optimistic
	// Dirty side effects have neither trust nor a bond; each occupies a
	// step of its own.
	Dirty
)

func (l SecurityLvl) String() string {
	switch l {
	case Escrowed:
		return "Escrowed"
	case Optimistic:
		return "Optimistic"
	case Dirty:
		return "Dirty"
	default:
		return "Unknown"
	}
}

// InsuranceHint is the optional (bond, reward) pair a side effect's
// encoded arguments may carry, extracted by the side-effects protocol
// during validation (spec.md §4.D step 3).
type InsuranceHint struct {
	Bond   uint64
	Reward uint64
}

// SideEffect is a user-submitted unit of remote execution (spec.md §3).
type SideEffect struct {
	TargetGatewayID ids.GatewayId
	// Action is the first 4 bytes of EncodedArgs's operation selector.
	Action [4]byte
	// EncodedArgs is the ABI-encoded argument blob; an insurance hint, if
	// present, is embedded in here and extracted by the protocol, not by
	// the engine.
	EncodedArgs []byte
	// Prize is the reward the requester declared for this side effect.
	Prize uint64
}

// CanonicalEncoding returns the bytes whose hash is this side effect's id.
// The encoding must be deterministic and total-order-independent of Go
// struct layout, so it's built explicitly rather than via reflection.
func (s SideEffect) CanonicalEncoding() []byte {
	buf := make([]byte, 0, 4+4+8+len(s.EncodedArgs))
	buf = append(buf, s.TargetGatewayID[:]...)
	buf = append(buf, s.Action[:]...)
	buf = binary.BigEndian.AppendUint64(buf, s.Prize)
	buf = append(buf, s.EncodedArgs...)
	return buf
}

// ID computes the side effect's content-addressed id (spec.md §3: "Its id
// is the hash of its canonical encoding").
func (s SideEffect) ID(h ids.Hasher) ids.Id {
	return h.Hash(s.CanonicalEncoding())
}

// StepSideEffectID mixes the step index into the hash input so a side
// effect repeated across two steps gets distinct ids (spec.md §4.A).
func (s SideEffect) StepSideEffectID(h ids.Hasher, stepIndex int) ids.Id {
	salt := make([]byte, 4)
	binary.BigEndian.PutUint32(salt, uint32(stepIndex))
	return ids.HashWithSalt(h, s.CanonicalEncoding(), salt)
}

// ConfirmedSideEffect is filled exactly once, upon a successful confirm
// (spec.md §3).
type ConfirmedSideEffect struct {
	// Executioner is the account that gets paid for executing this SFX.
	Executioner Account
	// Cost is the amount owed to Executioner once the Xtx settles.
	Cost uint64
	// InclusionHeight is the foreign-chain height the inclusion proof
	// verified against.
	InclusionHeight uint64
	// DecodedParams is the portal-decoded event payload, kept for the
	// operation-specific confirmation predicate and for downstream
	// observers.
	DecodedParams []byte
}

// FullSideEffect wraps a SideEffect with the runtime metadata assigned
// during validation and (eventually) confirmation (spec.md §3).
type FullSideEffect struct {
	SideEffect SideEffect

	SecurityLvl SecurityLvl

	// SubmissionTargetHeight is the target chain's last finalized height
	// at admission — the lower bound for an acceptable inclusion proof.
	SubmissionTargetHeight uint64

	// Confirmed is nil until confirm() attaches a ConfirmedSideEffect.
	Confirmed *ConfirmedSideEffect
}

// IsConfirmed reports whether this FSX has been confirmed.
func (f *FullSideEffect) IsConfirmed() bool {
	return f.Confirmed != nil
}

// Step is an ordered sequence of FSX executed in parallel; steps
// themselves run sequentially (spec.md §3).
type Step []FullSideEffect

// AllConfirmed reports whether every FSX in the step has been confirmed.
func (s Step) AllConfirmed() bool {
	for i := range s {
		if !s[i].IsConfirmed() {
			return false
		}
	}
	return true
}

// ConfirmedCount returns how many FSX in the step are confirmed.
func (s Step) ConfirmedCount() int {
	n := 0
	for i := range s {
		if s[i].IsConfirmed() {
			n++
		}
	}
	return n
}
