// Package api exposes the engine's host-facing operations over JSON-RPC,
// grounded on the teacher's vms/platformvm.Service (gorilla/rpc, one
// exported method per call, `(r *http.Request, args *X, reply *Y) error`
// signatures) and api/health.Service for the liveness surface.
package api

import (
	"encoding/hex"
	"fmt"

	"github.com/t3rn/circuit/ids"
	"github.com/t3rn/circuit/xtx"
)

// SideEffectArg is the wire representation of xtx.SideEffect: binary
// fields are hex strings, the same convention the teacher's platformvm
// API uses for ids.ID and raw byte arguments (avajson-style string
// encodings rather than base64 or raw arrays).
type SideEffectArg struct {
	TargetGatewayID string `json:"targetGatewayId"`
	Action          string `json:"action"`
	EncodedArgs     string `json:"encodedArgs"`
	Prize           uint64 `json:"prize"`
}

func (a SideEffectArg) toSideEffect() (xtx.SideEffect, error) {
	gw, err := hex.DecodeString(a.TargetGatewayID)
	if err != nil || len(gw) != 4 {
		return xtx.SideEffect{}, fmt.Errorf("api: bad targetGatewayId: %q", a.TargetGatewayID)
	}
	action, err := hex.DecodeString(a.Action)
	if err != nil || len(action) != 4 {
		return xtx.SideEffect{}, fmt.Errorf("api: bad action selector: %q", a.Action)
	}
	args, err := hex.DecodeString(a.EncodedArgs)
	if err != nil {
		return xtx.SideEffect{}, fmt.Errorf("api: bad encodedArgs: %w", err)
	}
	var sfx xtx.SideEffect
	copy(sfx.TargetGatewayID[:], gw)
	copy(sfx.Action[:], action)
	sfx.EncodedArgs = args
	sfx.Prize = a.Prize
	return sfx, nil
}

// ConfirmationArg is the wire representation of xtx.ConfirmedSideEffect.
type ConfirmationArg struct {
	Executioner     string `json:"executioner"`
	Cost            uint64 `json:"cost"`
	InclusionHeight uint64 `json:"inclusionHeight"`
	DecodedParams   string `json:"decodedParams"`
}

func (c ConfirmationArg) toConfirmedSideEffect() (xtx.ConfirmedSideEffect, error) {
	params, err := hex.DecodeString(c.DecodedParams)
	if err != nil {
		return xtx.ConfirmedSideEffect{}, fmt.Errorf("api: bad decodedParams: %w", err)
	}
	return xtx.ConfirmedSideEffect{
		Executioner:     xtx.Account(c.Executioner),
		Cost:            c.Cost,
		InclusionHeight: c.InclusionHeight,
		DecodedParams:   params,
	}, nil
}

func idFromHex(s string) (ids.Id, error) {
	return ids.FromHex(s)
}

// SubmitBundleArgs is the request for Service.SubmitBundle.
type SubmitBundleArgs struct {
	Requester   string          `json:"requester"`
	SideEffects []SideEffectArg `json:"sideEffects"`
	Fee         uint64          `json:"fee"`
	Sequential  bool            `json:"sequential"`
}

// SubmitBundleReply is the response for Service.SubmitBundle.
type SubmitBundleReply struct {
	XtxID string `json:"xtxId"`
}

// BondInsuranceDepositArgs is the request for Service.BondInsuranceDeposit.
type BondInsuranceDepositArgs struct {
	Executor string `json:"executor"`
	XtxID    string `json:"xtxId"`
	SfxID    string `json:"sfxId"`
}

// ScheduleAsyncExecutionArgs is the request for Service.ScheduleAsyncExecution.
type ScheduleAsyncExecutionArgs struct {
	Executor             string        `json:"executor"`
	XtxID                string        `json:"xtxId"`
	SideEffect           SideEffectArg `json:"sideEffect"`
	MaxExecCost          uint64        `json:"maxExecCost"`
	MaxNotificationsCost uint64        `json:"maxNotificationsCost"`
}

// ConfirmSideEffectArgs is the request for Service.ConfirmSideEffect.
type ConfirmSideEffectArgs struct {
	Relayer      string          `json:"relayer"`
	XtxID        string          `json:"xtxId"`
	SideEffect   SideEffectArg   `json:"sideEffect"`
	Confirmation ConfirmationArg `json:"confirmation"`
}

// ProcessSignalQueueReply is the response for Service.ProcessSignalQueue.
type ProcessSignalQueueReply struct {
	Processed int `json:"processed"`
}

// SweepTimeoutsReply is the response for Service.SweepTimeouts.
type SweepTimeoutsReply struct {
	Reverted bool `json:"reverted"`
}
