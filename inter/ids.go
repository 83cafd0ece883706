package inter

import "github.com/Fantom-foundation/lachesis-base/inter/idx"

// Object identifiers. Each kind of ledger object has its own id space, assigned
// sequentially at creation; ordering by id is ordering by creation.
type (
	AccountID        uint64
	AssetID          uint64
	CouncilMemberID  uint64
	BenefactorID     uint64
	CallOrderID      uint64
	SettlementID     uint64
	CollateralBidID  uint64
	VestingBalanceID uint64
	TicketID         uint64
	AccumulatorID    uint64
	BudgetRecordID   uint64
)

// BlockProducerID identifies a registered block producer.
type BlockProducerID = idx.ValidatorID

// Reserved accounts created at genesis.
const (
	// CouncilAccount is controlled by the elected council.
	CouncilAccount AccountID = 0
	// BlockProducerAccount is controlled by the elected block producers.
	BlockProducerAccount AccountID = 1
	// RelaxedCouncilAccount mirrors the council authority with relaxed rules.
	RelaxedCouncilAccount AccountID = 2
	// NullAccount has no authority; funds sent there are destroyed.
	NullAccount AccountID = 3
	// TempAccount is the holder of intermediate balances.
	TempAccount AccountID = 4
	// ProxyToSelfAccount as a voting account means "vote with my own opinion".
	ProxyToSelfAccount AccountID = 5
)

// CoreAsset is the network's native asset.
const CoreAsset AssetID = 0
