package xtx

import (
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/status"
)

// StepsCounter tracks progress through the step vector (spec.md §3).
type StepsCounter struct {
	Cursor int
	Total  int
}

// DelaySchedule is an optional per-step delay the requester can attach;
// the engine carries it but does not interpret it (out of scope per
// spec.md §1 — fee/weight/scheduling policy lives in the host).
type DelaySchedule struct {
	StepDelayBlocks []uint64
}

// Xtx is the content-addressed root entity of one execution transaction
// (spec.md §3).
type Xtx struct {
	ID ids.Id

	Requester  Account
	TimeoutsAt BlockNumber

	Steps StepsCounter

	Status status.Status

	Delay *DelaySchedule

	TotalReward uint64
}

// IsTerminal reports whether this Xtx has reached a halting state
// (spec.md §3).
func (x Xtx) IsTerminal() bool {
	return x.Status.IsTerminal()
}
