package xtx

import "github.com/t3rn/circuit/ids"

// SignalKind is the out-of-band control message a contract author or
// requester can send for an in-flight Xtx (spec.md GLOSSARY: "Signal").
type SignalKind uint8

const (
	SignalComplete SignalKind = iota
	SignalKill
)

func (k SignalKind) String() string {
	switch k {
	case SignalComplete:
		return "Complete"
	case SignalKill:
		return "Kill"
	default:
		return "Unknown"
	}
}

// ExecutionSignal is one queued control message, keyed to the Xtx it
// targets.
type ExecutionSignal struct {
	XtxID ids.Id
	Kind  SignalKind
	// Cause, when Kind is SignalKill, records why — purely informational;
	// the engine does not read it when choosing the revert status.
	Cause string
}
