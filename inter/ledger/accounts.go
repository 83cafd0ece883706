package ledger

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

// Account is a chain account with its voting options and core statistics.
type Account struct {
	ID   inter.AccountID
	Name string

	// MembershipExpiration is the end of the paid membership;
	// inter.MaxTimestamp for lifetime members.
	MembershipExpiration inter.Timestamp

	Options         AccountOptions
	NumCouncilVoted uint16

	// CashbackVesting points to the vesting balance receiving fee cashback.
	CashbackVesting *inter.VestingBalanceID `rlp:"nil"`

	// AllowedAssets whitelists the assets a buyback account may hold.
	AllowedAssets []inter.AssetID

	Owner  inter.Authority
	Active inter.Authority

	Stats AccountStatistics
}

// AccountOptions holds the vote selection of an account.
type AccountOptions struct {
	// VotingAccount is the proxy whose opinion is used, or
	// inter.ProxyToSelfAccount.
	VotingAccount inter.AccountID

	// Votes is sorted ascending.
	Votes []inter.VoteID

	NumBlockProducer uint16
	NumCouncil       uint16
}

// AccountStatistics tracks the core-asset holdings that count towards voting
// and the voting power snapshot of the last tally.
type AccountStatistics struct {
	CoreInBalance     inter.Share
	TotalCoreInOrders inter.Share

	TotalCorePOL      inter.Share
	TotalPOLValue     inter.Share
	TotalCorePOB      inter.Share
	TotalPOBValue     inter.Share
	TotalCoreInactive inter.Share

	// LastVoteTime is when the vote selection last changed.
	LastVoteTime inter.Timestamp

	// VoteTallyTime is the tally that last wrote VotingPower.
	VoteTallyTime inter.Timestamp
	VotingPower   VotingPower
}

// VotingPower is the per-kind stake an account voted with in a tally.
type VotingPower struct {
	All           uint64
	Active        uint64
	Council       uint64
	BlockProducer uint64
	Benefactor    uint64
}

// IsMember reports whether the membership is valid at now.
func (a *Account) IsMember(now inter.Timestamp) bool {
	return a.MembershipExpiration > now
}

// OpinionAccount returns the account whose vote selection applies.
func (a *Account) OpinionAccount() inter.AccountID {
	if a.Options.VotingAccount == inter.ProxyToSelfAccount {
		return a.ID
	}
	return a.Options.VotingAccount
}

// HasSomeCoreVoting reports whether any core holding may carry voting power.
func (s AccountStatistics) HasSomeCoreVoting() bool {
	return s.CoreInBalance > 0 || s.TotalCoreInOrders > 0 || s.TotalCorePOB > 0 || s.TotalCorePOL > 0
}

// Copy returns a deep copy.
func (a Account) Copy() Account {
	cp := a
	cp.Options.Votes = append([]inter.VoteID(nil), a.Options.Votes...)
	cp.AllowedAssets = append([]inter.AssetID(nil), a.AllowedAssets...)
	if a.CashbackVesting != nil {
		id := *a.CashbackVesting
		cp.CashbackVesting = &id
	}
	cp.Owner = a.Owner.Copy()
	cp.Active = a.Active.Copy()
	return cp
}

// Balance is the amount of one asset held by one account.
type Balance struct {
	Owner  inter.AccountID
	Asset  inter.AssetID
	Amount inter.Share
}

// VestingBalance releases its balance linearly in coin-seconds.
type VestingBalance struct {
	ID      inter.VestingBalanceID
	Owner   inter.AccountID
	Balance inter.AssetAmount
	Policy  CDDPolicy
}

// CDDPolicy is a coin-days-destroyed vesting policy: the balance becomes
// withdrawable as it accumulates coin-seconds, capped at
// balance * VestingSeconds. CoinSecondsEarned is kept as a big.Int for the
// RLP and JSON encodings of the snapshot.
type CDDPolicy struct {
	VestingSeconds    uint32
	StartClaim        inter.Timestamp
	CoinSecondsEarned *big.Int
	LastUpdate        inter.Timestamp
}

func (vb VestingBalance) Copy() VestingBalance {
	cp := vb
	if vb.Policy.CoinSecondsEarned != nil {
		cp.Policy.CoinSecondsEarned = new(big.Int).Set(vb.Policy.CoinSecondsEarned)
	}
	return cp
}

// Deposit adds amount to the balance after bringing earned coin-seconds up
// to now.
func (vb *VestingBalance) Deposit(now inter.Timestamp, amount inter.Share) {
	vb.updateCoinSeconds(now)
	vb.Balance.Amount += amount
}

func (vb *VestingBalance) updateCoinSeconds(now inter.Timestamp) {
	p := &vb.Policy
	earned := new(uint256.Int)
	if p.CoinSecondsEarned != nil {
		earned, _ = uint256.FromBig(p.CoinSecondsEarned)
	}
	balance := uint64(vb.Balance.Amount)
	earned.Add(earned, wide.Mul(balance, uint64(now.Sub(p.LastUpdate))))
	if limit := wide.Mul(balance, uint64(p.VestingSeconds)); earned.Gt(limit) {
		earned = limit
	}
	p.CoinSecondsEarned = earned.ToBig()
	p.LastUpdate = now
}

// Ticket is a proof-of-lock stake lock. Liquid tickets have no lock time and
// stop carrying voting value after the liquid-stake upgrade.
type Ticket struct {
	ID     inter.TicketID
	Owner  inter.AccountID
	Amount inter.Share
	Value  inter.Share
	Liquid bool
}
