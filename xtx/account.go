package xtx

// Account identifies a requester, executor, or bonder. The engine treats
// it as an opaque comparable value — encoding and key management live in
// the host, the same separation the teacher draws between frame_system's
// AccountId and the pallet's own logic.
type Account string

// BlockNumber is a chain block height, used for timeouts, bonded-at
// timestamps, and submission_target_height.
type BlockNumber uint64
