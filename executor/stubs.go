package executor

import (
	"context"
	"errors"

	"github.com/t3rn/circuit/ids"
)

// ErrTriggerUnavailable is returned by the remote-trigger stubs below.
var ErrTriggerUnavailable = errors.New("executor: trigger source not available in this deployment")

// OnXCMTrigger is an explicit stub for the original pallet's on_xcm_trigger
// entrypoint: in the original, a bundle can be admitted over an XCM
// transport in addition to the direct extrinsic path. This port only
// implements the direct and async-bus admission paths (spec.md §6);
// no XCM transport is wired in. Left as an explicit stub rather than
// silently omitted, per spec.md §9 design note (c): "an implementation
// should stub them explicitly and document non-availability."
func (e *Engine) OnXCMTrigger(ctx context.Context, encodedMessage []byte) (ids.Id, error) {
	return ids.Empty, ErrTriggerUnavailable
}

// OnRemoteGatewayTrigger is an explicit stub for the original pallet's
// remote-gateway-initiated trigger path, by which a side effect target
// gateway itself originates a bundle rather than a local requester. No
// remote gateway transport is wired into this deployment; see
// OnXCMTrigger and spec.md §9 design note (c).
func (e *Engine) OnRemoteGatewayTrigger(ctx context.Context, gatewayID ids.GatewayId, encodedMessage []byte) (ids.Id, error) {
	return ids.Empty, ErrTriggerUnavailable
}
