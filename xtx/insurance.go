package xtx

// InsuranceDeposit is the per-(XtxId, SideEffectId) bond accounting record
// (spec.md §3). It exists iff the side effect declared an insurance hint.
type InsuranceDeposit struct {
	RequiredBond   uint64
	RequiredReward uint64

	// BondedAmount is zero until bond_4_sfx fills it.
	BondedAmount uint64
	// Bonder is the executor account that posted the bond, empty until
	// bonded.
	Bonder Account
	// BondedAt is the block number bond_4_sfx ran at, zero until bonded.
	BondedAt BlockNumber
}

// IsBonded reports whether this deposit has been bonded yet.
func (d InsuranceDeposit) IsBonded() bool {
	return d.Bonder != ""
}
