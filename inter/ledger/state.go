// Package ledger holds the canonical ledger snapshot a maintenance pass reads
// and mutates. Every collection is kept sorted by object id, so iteration
// order, and with it every derived result, is the same on every node.
//
// A pass mutates the snapshot in place. Callers that need all-or-nothing
// semantics run the pass on State.Copy() and keep the copy only on success.
package ledger

import (
	"cmp"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-dxp-maint/inter"
)

var (
	ErrNotFound         = errors.New("object not found")
	ErrNegativeBalance  = errors.New("balance would become negative")
	ErrDuplicatedObject = errors.New("object already exists")
)

// GlobalProperties holds the elected sets and the vote id allocator.
type GlobalProperties struct {
	// ActiveBlockProducers is sorted ascending.
	ActiveBlockProducers []inter.BlockProducerID
	// ActiveCouncil is sorted ascending.
	ActiveCouncil []inter.CouncilMemberID

	// NextAvailableVoteID is the next unallocated vote instance. It bounds
	// the tally buffer.
	NextAvailableVoteID uint32
}

// DynamicProperties holds the chain counters that change every block.
type DynamicProperties struct {
	HeadBlockNumber idx.Block
	Time            inter.Timestamp
	CurrentAslot    uint64

	NextMaintenanceTime inter.Timestamp
	LastBudgetTime      inter.Timestamp
	LastVoteTallyTime   inter.Timestamp

	// BlockProducerBudget is the unspent producer pay of the interval.
	BlockProducerBudget inter.Share

	// TotalPOB and TotalInactive switch proof-of-backing stake on once positive.
	TotalPOB      inter.Share
	TotalInactive inter.Share

	AccountsRegisteredThisInterval uint32
	// MaintenanceSkips counts whole intervals skipped by the last maintenance.
	MaintenanceSkips uint32
}

// ProducerSchedule is the production order of the current round.
type ProducerSchedule struct {
	CurrentShuffled []inter.BlockProducerID
}

// BudgetRecord is the immutable account of one interval's budget.
type BudgetRecord struct {
	ID   inter.BudgetRecordID
	Time inter.Timestamp

	TimeSinceLastBudget uint64

	FromInitialReserve            inter.Share
	FromAccumulatedFees           inter.Share
	FromUnusedBlockProducerBudget inter.Share

	RequestedBlockProducerBudget inter.Share
	TotalBudget                  inter.Share
	BlockProducerBudget          inter.Share
	BenefactorBudget             inter.Share
	LeftoverBenefactorFunds      inter.Share

	SupplyDelta   inter.Share
	MaxSupply     inter.Share
	CurrentSupply inter.Share
}

// State is the full ledger snapshot.
type State struct {
	Global   GlobalProperties
	Dynamic  DynamicProperties
	Schedule ProducerSchedule

	Accounts         []Account
	Balances         []Balance
	VestingBalances  []VestingBalance
	Tickets          []Ticket
	BlockProducers   []BlockProducer
	CouncilMembers   []CouncilMember
	Benefactors      []Benefactor
	Assets           []Asset
	CallOrders       []CallOrder
	ForceSettlements []ForceSettlement
	CollateralBids   []CollateralBid
	FBAAccumulators  []FBAAccumulator
	Buybacks         []Buyback
	BudgetRecords    []BudgetRecord

	NextCallOrderID      inter.CallOrderID
	NextVestingBalanceID inter.VestingBalanceID
}

// Hash returns the sha256 fingerprint of the RLP encoding. Two nodes that
// applied the same pass agree on it.
func (s *State) Hash() hash.Hash {
	hasher := sha256.New()
	err := rlp.Encode(hasher, s)
	if err != nil {
		panic("can't hash: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}

// Copy returns a deep copy sharing no memory with s.
func (s *State) Copy() *State {
	cp := *s
	cp.Global.ActiveBlockProducers = append([]inter.BlockProducerID(nil), s.Global.ActiveBlockProducers...)
	cp.Global.ActiveCouncil = append([]inter.CouncilMemberID(nil), s.Global.ActiveCouncil...)
	cp.Schedule.CurrentShuffled = append([]inter.BlockProducerID(nil), s.Schedule.CurrentShuffled...)

	cp.Accounts = make([]Account, len(s.Accounts))
	for i, a := range s.Accounts {
		cp.Accounts[i] = a.Copy()
	}
	cp.VestingBalances = make([]VestingBalance, len(s.VestingBalances))
	for i, vb := range s.VestingBalances {
		cp.VestingBalances[i] = vb.Copy()
	}
	cp.BlockProducers = make([]BlockProducer, len(s.BlockProducers))
	for i, bp := range s.BlockProducers {
		bp.SigningKey = append([]byte(nil), bp.SigningKey...)
		cp.BlockProducers[i] = bp
	}
	cp.Benefactors = make([]Benefactor, len(s.Benefactors))
	for i, b := range s.Benefactors {
		cp.Benefactors[i] = b.Copy()
	}
	cp.Assets = make([]Asset, len(s.Assets))
	for i, a := range s.Assets {
		cp.Assets[i] = a.Copy()
	}
	cp.FBAAccumulators = make([]FBAAccumulator, len(s.FBAAccumulators))
	for i, acc := range s.FBAAccumulators {
		if acc.DesignatedAsset != nil {
			id := *acc.DesignatedAsset
			acc.DesignatedAsset = &id
		}
		cp.FBAAccumulators[i] = acc
	}

	cp.Balances = append([]Balance(nil), s.Balances...)
	cp.Tickets = append([]Ticket(nil), s.Tickets...)
	cp.CouncilMembers = append([]CouncilMember(nil), s.CouncilMembers...)
	cp.CallOrders = append([]CallOrder(nil), s.CallOrders...)
	cp.ForceSettlements = append([]ForceSettlement(nil), s.ForceSettlements...)
	cp.CollateralBids = append([]CollateralBid(nil), s.CollateralBids...)
	cp.Buybacks = append([]Buyback(nil), s.Buybacks...)
	cp.BudgetRecords = append([]BudgetRecord(nil), s.BudgetRecords...)
	return &cp
}

// Sort restores id order of every collection, e.g. after loading a snapshot
// assembled by hand.
func (s *State) Sort() {
	sortBy(s.Accounts, func(a *Account) inter.AccountID { return a.ID })
	sort.SliceStable(s.Balances, func(i, j int) bool { return balanceLess(&s.Balances[i], s.Balances[j].Owner, s.Balances[j].Asset) })
	sortBy(s.VestingBalances, func(v *VestingBalance) inter.VestingBalanceID { return v.ID })
	sortBy(s.Tickets, func(t *Ticket) inter.TicketID { return t.ID })
	sortBy(s.BlockProducers, func(b *BlockProducer) inter.BlockProducerID { return b.ID })
	sortBy(s.CouncilMembers, func(c *CouncilMember) inter.CouncilMemberID { return c.ID })
	sortBy(s.Benefactors, func(b *Benefactor) inter.BenefactorID { return b.ID })
	sortBy(s.Assets, func(a *Asset) inter.AssetID { return a.ID })
	sortBy(s.CallOrders, func(c *CallOrder) inter.CallOrderID { return c.ID })
	sortBy(s.ForceSettlements, func(f *ForceSettlement) inter.SettlementID { return f.ID })
	sortBy(s.CollateralBids, func(c *CollateralBid) inter.CollateralBidID { return c.ID })
	sortBy(s.FBAAccumulators, func(f *FBAAccumulator) inter.AccumulatorID { return f.ID })
	sortBy(s.Buybacks, func(b *Buyback) inter.AssetID { return b.Asset })
	sortBy(s.BudgetRecords, func(b *BudgetRecord) inter.BudgetRecordID { return b.ID })
	for i := range s.Assets {
		if st := s.Assets[i].SmartToken; st != nil {
			sortBy(st.Feeds, func(f *FeedEntry) inter.AccountID { return f.Publisher })
		}
	}
}

func sortBy[T any, K cmp.Ordered](s []T, key func(*T) K) {
	sort.SliceStable(s, func(i, j int) bool { return key(&s[i]) < key(&s[j]) })
}

func find[T any, K cmp.Ordered](s []T, id K, key func(*T) K) (int, bool) {
	i := sort.Search(len(s), func(i int) bool { return key(&s[i]) >= id })
	return i, i < len(s) && key(&s[i]) == id
}

func get[T any, K cmp.Ordered](s []T, id K, key func(*T) K) *T {
	if i, ok := find(s, id, key); ok {
		return &s[i]
	}
	return nil
}

// Account returns the account with the given id, or nil.
func (s *State) Account(id inter.AccountID) *Account {
	return get(s.Accounts, id, func(a *Account) inter.AccountID { return a.ID })
}

// Asset returns the asset with the given id, or nil.
func (s *State) Asset(id inter.AssetID) *Asset {
	return get(s.Assets, id, func(a *Asset) inter.AssetID { return a.ID })
}

// CoreAsset returns the core asset, or nil for an empty ledger.
func (s *State) CoreAsset() *Asset {
	return s.Asset(inter.CoreAsset)
}

// BlockProducer returns the block producer with the given id, or nil.
func (s *State) BlockProducer(id inter.BlockProducerID) *BlockProducer {
	return get(s.BlockProducers, id, func(b *BlockProducer) inter.BlockProducerID { return b.ID })
}

// CouncilMember returns the council member with the given id, or nil.
func (s *State) CouncilMember(id inter.CouncilMemberID) *CouncilMember {
	return get(s.CouncilMembers, id, func(c *CouncilMember) inter.CouncilMemberID { return c.ID })
}

// Benefactor returns the benefactor with the given id, or nil.
func (s *State) Benefactor(id inter.BenefactorID) *Benefactor {
	return get(s.Benefactors, id, func(b *Benefactor) inter.BenefactorID { return b.ID })
}

// VestingBalance returns the vesting balance with the given id, or nil.
func (s *State) VestingBalance(id inter.VestingBalanceID) *VestingBalance {
	return get(s.VestingBalances, id, func(v *VestingBalance) inter.VestingBalanceID { return v.ID })
}

// CallOrder returns the call order with the given id, or nil.
func (s *State) CallOrder(id inter.CallOrderID) *CallOrder {
	return get(s.CallOrders, id, func(c *CallOrder) inter.CallOrderID { return c.ID })
}

// AddCallOrder stores a new call order under the next free id. Pointers into
// CallOrders obtained earlier are invalidated.
func (s *State) AddCallOrder(c CallOrder) inter.CallOrderID {
	if n := len(s.CallOrders); n > 0 && s.CallOrders[n-1].ID >= s.NextCallOrderID {
		s.NextCallOrderID = s.CallOrders[n-1].ID + 1
	}
	c.ID = s.NextCallOrderID
	s.NextCallOrderID++
	s.CallOrders = append(s.CallOrders, c)
	return c.ID
}

// RemoveCallOrder deletes a call order.
func (s *State) RemoveCallOrder(id inter.CallOrderID) error {
	i, ok := find(s.CallOrders, id, func(c *CallOrder) inter.CallOrderID { return c.ID })
	if !ok {
		return fmt.Errorf("call order %d: %w", id, ErrNotFound)
	}
	s.CallOrders = append(s.CallOrders[:i], s.CallOrders[i+1:]...)
	return nil
}

// RemoveForceSettlement deletes a settlement request.
func (s *State) RemoveForceSettlement(id inter.SettlementID) error {
	i, ok := find(s.ForceSettlements, id, func(f *ForceSettlement) inter.SettlementID { return f.ID })
	if !ok {
		return fmt.Errorf("force settlement %d: %w", id, ErrNotFound)
	}
	s.ForceSettlements = append(s.ForceSettlements[:i], s.ForceSettlements[i+1:]...)
	return nil
}

// RemoveCollateralBid deletes a collateral bid.
func (s *State) RemoveCollateralBid(id inter.CollateralBidID) error {
	i, ok := find(s.CollateralBids, id, func(c *CollateralBid) inter.CollateralBidID { return c.ID })
	if !ok {
		return fmt.Errorf("collateral bid %d: %w", id, ErrNotFound)
	}
	s.CollateralBids = append(s.CollateralBids[:i], s.CollateralBids[i+1:]...)
	return nil
}

// AddVestingBalance stores a new vesting balance under the next free id.
func (s *State) AddVestingBalance(vb VestingBalance) inter.VestingBalanceID {
	if n := len(s.VestingBalances); n > 0 && s.VestingBalances[n-1].ID >= s.NextVestingBalanceID {
		s.NextVestingBalanceID = s.VestingBalances[n-1].ID + 1
	}
	vb.ID = s.NextVestingBalanceID
	s.NextVestingBalanceID++
	s.VestingBalances = append(s.VestingBalances, vb)
	return vb.ID
}

// AddBudgetRecord appends a budget record under the next id.
func (s *State) AddBudgetRecord(rec BudgetRecord) inter.BudgetRecordID {
	rec.ID = 0
	if n := len(s.BudgetRecords); n > 0 {
		rec.ID = s.BudgetRecords[n-1].ID + 1
	}
	s.BudgetRecords = append(s.BudgetRecords, rec)
	return rec.ID
}

func balanceLess(b *Balance, owner inter.AccountID, asset inter.AssetID) bool {
	if b.Owner != owner {
		return b.Owner < owner
	}
	return b.Asset < asset
}

// BalanceOf returns the balance of owner in asset.
func (s *State) BalanceOf(owner inter.AccountID, asset inter.AssetID) inter.Share {
	i := sort.Search(len(s.Balances), func(i int) bool { return !balanceLess(&s.Balances[i], owner, asset) })
	if i < len(s.Balances) && s.Balances[i].Owner == owner && s.Balances[i].Asset == asset {
		return s.Balances[i].Amount
	}
	return 0
}

// BalancesOf returns all balances held by owner, ordered by asset.
func (s *State) BalancesOf(owner inter.AccountID) []Balance {
	var out []Balance
	for _, b := range s.Balances {
		if b.Owner == owner {
			out = append(out, b)
		}
	}
	return out
}

// AdjustBalance adds delta to the balance of owner. Core balance changes are
// mirrored into the account statistics.
func (s *State) AdjustBalance(owner inter.AccountID, delta inter.AssetAmount) error {
	if delta.Amount == 0 {
		return nil
	}
	i := sort.Search(len(s.Balances), func(i int) bool { return !balanceLess(&s.Balances[i], owner, delta.Asset) })
	if i < len(s.Balances) && s.Balances[i].Owner == owner && s.Balances[i].Asset == delta.Asset {
		if s.Balances[i].Amount+delta.Amount < 0 {
			return fmt.Errorf("account %d asset %d: %w", owner, delta.Asset, ErrNegativeBalance)
		}
		s.Balances[i].Amount += delta.Amount
	} else {
		if delta.Amount < 0 {
			return fmt.Errorf("account %d asset %d: %w", owner, delta.Asset, ErrNegativeBalance)
		}
		s.Balances = append(s.Balances, Balance{})
		copy(s.Balances[i+1:], s.Balances[i:])
		s.Balances[i] = Balance{Owner: owner, Asset: delta.Asset, Amount: delta.Amount}
	}
	if delta.Asset == inter.CoreAsset {
		if acc := s.Account(owner); acc != nil {
			acc.Stats.CoreInBalance += delta.Amount
		}
	}
	return nil
}
