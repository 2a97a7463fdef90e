// Package hostif declares the external collaborators the Xtx engine
// consumes but never implements (spec.md §1, §6): the name service, the
// portal, the account manager, the executor registry, and the async
// execution bus. These map to the teacher's "trait-based host
// polymorphism" (spec.md §9) — interfaces injected at construction, the
// engine generic only over these contracts, grounded on how the teacher
// injects Xdns, Portal, AccountManager, Executors into its own Backend
// (vms/platformvm/txs/executor/backend.go).
package hostif

import (
	"context"

	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/xtx"
)

// GatewayType classifies a target chain for security-level assignment
// (spec.md §4.D step 4).
type GatewayType uint8

const (
	GatewayExternal GatewayType = iota
	GatewayProgrammableInternal
	GatewayOnCircuit
)

// ABI is the opaque gateway interface description the name service
// returns; the engine never interprets its contents, only hands it to the
// side-effects protocol.
type ABI struct {
	Raw []byte
}

// BenefitSource tags which pool a charge's benefit is drawn from
// (spec.md §4.F square_up).
type BenefitSource uint8

const (
	TrafficRewards BenefitSource = iota
	TrafficFees
)

// CircuitRole tags which role a charge's payer/payee plays.
type CircuitRole uint8

const (
	RoleRequester CircuitRole = iota
	RoleExecutor
)

// Outcome is the terminal disposition of an account-manager charge.
type Outcome uint8

const (
	OutcomeCommit Outcome = iota
	OutcomeRevert
)

// SideEffectInterface is the operation-specific descriptor the name
// service can fetch by interface id (spec.md §6:
// fetch_side_effect_interface).
type SideEffectInterface struct {
	ID     ids.Id
	Action [4]byte
}

// NameService is the cross-chain name service (spec.md §1, out of scope
// here, consumed only).
type NameService interface {
	GetABI(target ids.GatewayId) (ABI, error)
	AllowedSideEffects(target ids.GatewayId) (map[[4]byte]struct{}, error)
	GetGatewayTypeUnsafe(target ids.GatewayId) GatewayType
	GetGatewayParaID(target ids.GatewayId) (uint32, error)
	FetchSideEffectInterface(id ids.Id) (SideEffectInterface, error)
	GetGatewaySecurityCoordinates(target ids.GatewayId) ([]byte, error)
}

// Portal verifies inclusion proofs on foreign chains and decodes event
// payloads (spec.md §1, out of scope here, consumed only).
type Portal interface {
	GetLatestFinalizedHeight(ctx context.Context, target ids.GatewayId) (uint64, error)
	ConfirmAndDecodePayloadParams(ctx context.Context, target ids.GatewayId, height uint64, inclusionData []byte, sfxID ids.Id) (params []byte, source xtx.Account, err error)
}

// AccountManager holds deposits and charges per charge id (spec.md §1,
// out of scope here, consumed only).
type AccountManager interface {
	Deposit(chargeID ids.Id, payer xtx.Account, fee, reward uint64, source BenefitSource, role CircuitRole, recipient *xtx.Account) error
	Finalize(chargeID ids.Id, outcome Outcome, payee *xtx.Account, cost *uint64) error
	TryFinalize(chargeID ids.Id, outcome Outcome, payee *xtx.Account, cost *uint64)

	// Transfer moves amount from -> to directly, outside the charge
	// lifecycle — used for insurance bonding/unbonding (spec.md §4.E),
	// which is collateral escrow rather than a reward/fee charge.
	Transfer(from, to xtx.Account, amount uint64) error
}

// ExecutorRegistry tracks known executors (spec.md §1, out of scope here,
// consumed only; executor selection itself is a Non-goal).
type ExecutorRegistry interface {
	IsKnown(executor xtx.Account) bool
}

// CheckOut is the async bus's terminal result for a scheduled side
// effect.
type CheckOut struct {
	Success       bool
	Confirmation  xtx.ConfirmedSideEffect
	FailureReason string
}

// AsyncBus is the asynchronous execution bus that carries remote
// invocations (spec.md §1, out of scope here, consumed only). Then
// registers a continuation to be invoked as a later, independent
// transaction (spec.md §9: "register-continuation-as-deferred-call").
type AsyncBus interface {
	GetStatus(sfxID ids.Id) (string, error)
	GetCheckIn(sfxID ids.Id) ([]byte, error)
	GetCheckOut(sfxID ids.Id) (CheckOut, error)
	IsScheduled(sfxID ids.Id) bool
	Then(sfxID ids.Id, payload []byte, continuation func(CheckOut) error) error
}

// SideEffectsProtocol type-checks encoded arguments against an ABI,
// extracts the optional insurance hint, and evaluates operation-specific
// confirmation predicates (spec.md §4.D steps 2-3, §4.F confirm step 4).
// This is the "side-effects protocol" of spec.md §4.D — a collaborator
// the validator and confirm() call into, not a thing the engine
// reimplements (spec.md §1 Non-goals: "implementing any target-chain
// protocol").
type SideEffectsProtocol interface {
	// TypeCheck validates sfx's encoded arguments against abi for one of
	// the allowed operations, recording any cross-SFX bindings into
	// state.
	TypeCheck(abi ABI, allowed map[[4]byte]struct{}, sfx xtx.SideEffect, state *xtx.LocalState) error

	// ExtractInsuranceHint returns the (bond, reward) pair embedded in
	// sfx's arguments, if any (spec.md §4.D step 3).
	ExtractInsuranceHint(sfx xtx.SideEffect) (*xtx.InsuranceHint, error)

	// ConfirmationPredicate runs the operation-specific check against the
	// portal-decoded params and the accumulated local state, tagged with
	// the FSX's security level (spec.md §4.F confirm step 4).
	ConfirmationPredicate(sfx xtx.SideEffect, lvl xtx.SecurityLvl, decodedParams []byte, state xtx.LocalState) error
}
