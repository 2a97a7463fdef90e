package executor

import "errors"

// Admission / setup errors (spec.md §7 Admission, Fatal invariant kinds).
var (
	ErrDuplicatedXtx               = errors.New("executor: xtx already exists")
	ErrMissingXtxID                = errors.New("executor: xtx id required for this entry status")
	ErrXtxNotFound                 = errors.New("executor: xtx not found")
	ErrIncompatibleEntryStatus     = errors.New("executor: on-disk status incompatible with requested entry")
	ErrMissingStorageArtifacts     = errors.New("executor: xtx storage artifacts not found")
	ErrSideEffectsValidationFailed = errors.New("executor: side effects validation failed")
)

// Confirmation errors (spec.md §7 Confirmation kind).
var (
	ErrEmptyCurrentStep      = errors.New("executor: xtx has an empty current step")
	ErrSideEffectNotInStep   = errors.New("executor: side effect not found in current step")
	ErrSideEffectAlreadyConfirmed = errors.New("executor: side effect already confirmed")
	ErrInclusionProofFailed  = errors.New("executor: inclusion proof verification failed")
	ErrConfirmationPredicateFailed = errors.New("executor: confirmation predicate rejected execution")
)

// Async errors (spec.md §7 Async kind).
var (
	ErrAlreadyScheduled = errors.New("executor: side effect already scheduled over the async bus")
	ErrUnknownExecutor  = errors.New("executor: account is not a registered executor")
)

// Fatal invariant errors (spec.md §7 Fatal invariant kind: "Halt the
// handler; host transactional layer rolls back. Never silently recover.").
var (
	ErrUnconfirmedAtSettlement = errors.New("executor: square_up reached Finished with an unconfirmed FSX")
)
