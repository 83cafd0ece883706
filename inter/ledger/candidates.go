package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-dxp-maint/inter"
)

// BlockProducer is a registered block producer candidate.
type BlockProducer struct {
	ID         inter.BlockProducerID
	Account    inter.AccountID
	VoteID     inter.VoteID
	TotalVotes uint64
	SigningKey []byte
	URL        string

	TotalMissed        uint32
	LastConfirmedBlock idx.Block
}

// CouncilMember is a registered council candidate.
type CouncilMember struct {
	ID         inter.CouncilMemberID
	Account    inter.AccountID
	VoteID     inter.VoteID
	TotalVotes uint64
	URL        string
}

// Benefactor is a voted-on recipient of the daily budget. Once created it is
// never removed; it simply stops being paid outside its work window.
type Benefactor struct {
	ID      inter.BenefactorID
	Account inter.AccountID
	Name    string
	URL     string

	WorkBegin inter.Timestamp
	WorkEnd   inter.Timestamp
	DailyPay  inter.Share

	Payout Payout

	VoteFor     inter.VoteID
	VoteAgainst inter.VoteID

	TotalVotesFor     uint64
	TotalVotesAgainst uint64
}

// IsActive reports whether now is inside the work window, bounds included.
func (b *Benefactor) IsActive(now inter.Timestamp) bool {
	return now >= b.WorkBegin && now <= b.WorkEnd
}

// ApprovingStake is votes for minus votes against.
func (b *Benefactor) ApprovingStake() int64 {
	return int64(b.TotalVotesFor) - int64(b.TotalVotesAgainst)
}

// Copy returns a deep copy.
func (b Benefactor) Copy() Benefactor {
	cp := b
	cp.Payout = b.Payout.Copy()
	return cp
}

// Payout is the closed set of benefactor payout policies. Exactly one member
// is set.
type Payout struct {
	Refund  *RefundPayout  `rlp:"nil"`
	Vesting *VestingPayout `rlp:"nil"`
	Burn    *BurnPayout    `rlp:"nil"`
}

// RefundPayout returns all pay to the reserve.
type RefundPayout struct {
	TotalBurned inter.Share
}

// VestingPayout deposits all pay into a vesting balance.
type VestingPayout struct {
	Balance inter.VestingBalanceID
}

// BurnPayout sends all pay to the null account.
type BurnPayout struct {
	TotalBurned inter.Share
}

// Copy returns a deep copy.
func (p Payout) Copy() Payout {
	var cp Payout
	if p.Refund != nil {
		v := *p.Refund
		cp.Refund = &v
	}
	if p.Vesting != nil {
		v := *p.Vesting
		cp.Vesting = &v
	}
	if p.Burn != nil {
		v := *p.Burn
		cp.Burn = &v
	}
	return cp
}
