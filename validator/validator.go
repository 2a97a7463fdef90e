// Package validator implements spec.md §4.D: per-SFX argument checking,
// security-level classification, and step partitioning. Grounded on the
// teacher's txs/executor verification pass (staker_tx_verification.go,
// subnet_tx_verification.go): a stateless function taking a backend of
// injected collaborators and a slice of candidate entities, returning
// either an error or a validated, reshaped result — never mutating
// storage itself.
package validator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/t3rn/circuit/hostif"
	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/xtx"
)

// Admission errors (spec.md §7: Admission kind — "Reject transaction; no
// state change").
var (
	ErrEmptyBundle          = errors.New("validator: bundle has zero side effects")
	ErrUnknownTarget        = errors.New("validator: unknown target gateway")
	ErrABIMismatch          = errors.New("validator: encoded arguments do not match ABI")
	ErrInsurancePrizeMismatch = errors.New("validator: sfx.prize does not equal declared insurance reward")
	ErrTargetHeightUnavailable = errors.New("validator: target chain finalized height unavailable")
)

// Backend bundles the collaborators Validate needs, grounded on the
// teacher's executor.Backend pattern of one struct of injected
// interfaces passed by reference into every visitor method.
type Backend struct {
	NameService hostif.NameService
	Protocol    hostif.SideEffectsProtocol
	Portal      hostif.Portal
	Hasher      ids.Hasher
	SelfGateway ids.GatewayId
}

// Validate runs spec.md §4.D over sfxs in submission order, returning the
// sorted, step-partitioned FSX vector. sequential is accepted but ignored
// at this layer (spec.md §4.D, §9 open question (b)): it's preserved on
// the signature for forward compatibility with future step-grouping, not
// because this layer consults it.
func (b Backend) Validate(ctx context.Context, sfxs []xtx.SideEffect, localState *xtx.LocalState, sequential bool) ([]xtx.Step, []xtx.FullSideEffect, error) {
	_ = sequential

	if len(sfxs) == 0 {
		return nil, nil, ErrEmptyBundle
	}

	fsxs := make([]xtx.FullSideEffect, 0, len(sfxs))
	for _, sfx := range sfxs {
		fsx, err := b.validateOne(ctx, sfx, localState)
		if err != nil {
			return nil, nil, err
		}
		fsxs = append(fsxs, fsx)
	}

	// Stable sort so Escrowed and Optimistic precede Dirty, ties keeping
	// submission order (spec.md §4.D: "Sort FSX by SecurityLvl ...; ties
	// keep submission order (stable sort)").
	sort.SliceStable(fsxs, func(i, j int) bool {
		return rank(fsxs[i].SecurityLvl) < rank(fsxs[j].SecurityLvl)
	})

	steps := partitionSteps(fsxs)
	return steps, fsxs, nil
}

func rank(lvl xtx.SecurityLvl) int {
	if lvl == xtx.Dirty {
		return 1
	}
	return 0
}

// partitionSteps implements spec.md §4.D: accumulate into the current
// step until a Dirty FSX appears; each Dirty FSX starts (and fills) its
// own new step.
func partitionSteps(fsxs []xtx.FullSideEffect) []xtx.Step {
	var steps []xtx.Step
	var current xtx.Step
	for _, fsx := range fsxs {
		if fsx.SecurityLvl == xtx.Dirty {
			if len(current) > 0 {
				steps = append(steps, current)
				current = nil
			}
			steps = append(steps, xtx.Step{fsx})
			continue
		}
		current = append(current, fsx)
	}
	if len(current) > 0 {
		steps = append(steps, current)
	}
	return steps
}

func (b Backend) validateOne(ctx context.Context, sfx xtx.SideEffect, localState *xtx.LocalState) (xtx.FullSideEffect, error) {
	abi, err := b.NameService.GetABI(sfx.TargetGatewayID)
	if err != nil {
		return xtx.FullSideEffect{}, fmt.Errorf("%w: %v", ErrUnknownTarget, err)
	}
	allowed, err := b.NameService.AllowedSideEffects(sfx.TargetGatewayID)
	if err != nil {
		return xtx.FullSideEffect{}, fmt.Errorf("%w: %v", ErrUnknownTarget, err)
	}

	if err := b.Protocol.TypeCheck(abi, allowed, sfx, localState); err != nil {
		return xtx.FullSideEffect{}, fmt.Errorf("%w: %v", ErrABIMismatch, err)
	}

	hint, err := b.Protocol.ExtractInsuranceHint(sfx)
	if err != nil {
		return xtx.FullSideEffect{}, err
	}

	var lvl xtx.SecurityLvl
	switch {
	case hint != nil:
		if sfx.Prize != hint.Reward {
			return xtx.FullSideEffect{}, ErrInsurancePrizeMismatch
		}
		lvl = xtx.Optimistic
	default:
		gwType := b.NameService.GetGatewayTypeUnsafe(sfx.TargetGatewayID)
		if sfx.TargetGatewayID == b.SelfGateway || gwType == hostif.GatewayProgrammableInternal || gwType == hostif.GatewayOnCircuit {
			lvl = xtx.Escrowed
		} else {
			lvl = xtx.Dirty
		}
	}

	height, err := b.Portal.GetLatestFinalizedHeight(ctx, sfx.TargetGatewayID)
	if err != nil {
		return xtx.FullSideEffect{}, fmt.Errorf("%w: %v", ErrTargetHeightUnavailable, err)
	}

	return xtx.FullSideEffect{
		SideEffect:             sfx,
		SecurityLvl:            lvl,
		SubmissionTargetHeight: height,
		Confirmed:              nil,
	}, nil
}

// InsuranceHintOf extracts the insurance hint for an already-validated
// FSX, used by the lifecycle engine when building insurance deposits
// after validation (spec.md §4.D step 3, consumed in Phase 2).
func (b Backend) InsuranceHintOf(sfx xtx.SideEffect) (*xtx.InsuranceHint, error) {
	return b.Protocol.ExtractInsuranceHint(sfx)
}
