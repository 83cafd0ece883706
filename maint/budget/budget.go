// Package budget computes the spendable budget of a maintenance interval and
// pays it out to block production and benefactors.
package budget

import (
	"errors"
	"fmt"
	"sort"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

var (
	ErrNoTimeToMaintenance = errors.New("next maintenance time is not in the future")
	ErrNegativeReserve     = errors.New("core reserve is negative")
	ErrConservation        = errors.New("budget supply delta does not balance")
)

// Allocator runs the budget of one interval.
type Allocator struct {
	state *ledger.State
	rules params.Rules
	now   inter.Timestamp
	log   logrus.FieldLogger
}

// New creates an allocator. st.Dynamic.NextMaintenanceTime must already point
// at the next interval.
func New(st *ledger.State, rules params.Rules, now inter.Timestamp, log logrus.FieldLogger) *Allocator {
	return &Allocator{
		state: st,
		rules: rules,
		now:   now,
		log:   log.WithField("module", "budget"),
	}
}

// Record fills the reserve side of a budget record: where the money comes from
// and the total budget released for the time since the last budget.
func (a *Allocator) Record() (ledger.BudgetRecord, error) {
	st := a.state
	core := st.CoreAsset()
	if core == nil {
		return ledger.BudgetRecord{}, fmt.Errorf("core asset: %w", ledger.ErrNotFound)
	}
	rec := ledger.BudgetRecord{
		Time:                          a.now,
		FromInitialReserve:            core.MaxSupply - core.Dynamic.CurrentSupply,
		FromAccumulatedFees:           core.Dynamic.AccumulatedFees,
		FromUnusedBlockProducerBudget: st.Dynamic.BlockProducerBudget,
		MaxSupply:                     core.MaxSupply,
	}
	if rec.FromInitialReserve < 0 {
		return rec, ErrNegativeReserve
	}

	last := st.Dynamic.LastBudgetTime
	if last.IsZero() || a.now <= last {
		return rec, nil
	}
	dt := uint64(a.now.Sub(last))
	rec.TimeSinceLastBudget = dt

	reserve := rec.FromInitialReserve + rec.FromAccumulatedFees + rec.FromUnusedBlockProducerBudget
	if reserve < 0 {
		return rec, ErrNegativeReserve
	}

	e := a.rules.Economy
	rec.TotalBudget = reserve
	// A rate product past 64 bits releases the whole reserve.
	rate, ok := wide.Mul64(dt, e.CoreAssetCycleRate)
	if !ok {
		return rec, nil
	}
	// Rounded up so that the last unit of the reserve can be released too.
	b, err := wide.MulDivCeil(uint64(reserve), rate, uint64(1)<<e.CoreAssetCycleRateBits)
	if err == nil && b < uint64(reserve) {
		rec.TotalBudget = inter.Share(b)
	}
	return rec, nil
}

// Run computes and distributes the budget, applies the supply delta to the
// core asset and appends the budget record.
func (a *Allocator) Run() (ledger.BudgetRecord, error) {
	st := a.state
	next := st.Dynamic.NextMaintenanceTime
	if next <= a.now {
		return ledger.BudgetRecord{}, ErrNoTimeToMaintenance
	}
	timeToMaint := uint64(next.Sub(a.now))
	blockInterval := uint64(a.rules.Maintenance.BlockInterval)
	if blockInterval == 0 {
		return ledger.BudgetRecord{}, wide.ErrDivideByZero
	}
	blocksToMaint := (timeToMaint + blockInterval - 1) / blockInterval

	rec, err := a.Record()
	if err != nil {
		return rec, err
	}
	available := rec.TotalBudget

	e := a.rules.Economy
	requested, err := wide.Uint64(wide.Mul(uint64(e.BlockProducerPayPerBlock), blocksToMaint))
	if err != nil || requested > uint64(inter.MaxShareSupply) {
		return rec, fmt.Errorf("requested block producer budget: %w", wide.ErrOverflow)
	}
	rec.RequestedBlockProducerBudget = inter.Share(requested)
	rec.BlockProducerBudget = inter.MinShare(rec.RequestedBlockProducerBudget, available)
	available -= rec.BlockProducerBudget

	benefactor := wide.Mul(uint64(e.BenefactorBudgetPerDay), timeToMaint)
	benefactor.Div(benefactor, uint256.NewInt(inter.SecondsPerDay))
	if benefactor.LtUint64(uint64(available)) {
		rec.BenefactorBudget = inter.Share(benefactor.Uint64())
	} else {
		rec.BenefactorBudget = available
	}
	available -= rec.BenefactorBudget

	leftover, err := a.PayBenefactors(rec.BenefactorBudget)
	if err != nil {
		return rec, err
	}
	rec.LeftoverBenefactorFunds = leftover

	rec.SupplyDelta = rec.BlockProducerBudget + rec.BenefactorBudget - rec.LeftoverBenefactorFunds -
		rec.FromAccumulatedFees - rec.FromUnusedBlockProducerBudget

	core := st.CoreAsset()
	if rec.SupplyDelta != rec.BlockProducerBudget+rec.BenefactorBudget-leftover-
		core.Dynamic.AccumulatedFees-st.Dynamic.BlockProducerBudget {
		return rec, ErrConservation
	}
	core.Dynamic.CurrentSupply += rec.SupplyDelta
	core.Dynamic.AccumulatedFees = 0

	// The unused budget was rolled into the reserve, so it is replaced.
	st.Dynamic.BlockProducerBudget = rec.BlockProducerBudget
	st.Dynamic.LastBudgetTime = a.now

	rec.CurrentSupply = core.Dynamic.CurrentSupply
	rec.ID = st.AddBudgetRecord(rec)

	a.log.WithFields(logrus.Fields{
		"total":      rec.TotalBudget,
		"producers":  rec.BlockProducerBudget,
		"benefactor": rec.BenefactorBudget,
		"leftover":   rec.LeftoverBenefactorFunds,
		"delta":      rec.SupplyDelta,
	}).Info("Budget processed")
	return rec, nil
}

// PayBenefactors pays active benefactors with positive approval, most
// approved first, until budget runs out. It returns what is left.
func (a *Allocator) PayBenefactors(budget inter.Share) (inter.Share, error) {
	st := a.state
	var active []*ledger.Benefactor
	for i := range st.Benefactors {
		b := &st.Benefactors[i]
		if b.IsActive(a.now) && b.ApprovingStake() > 0 {
			active = append(active, b)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		ai, aj := active[i].ApprovingStake(), active[j].ApprovingStake()
		if ai != aj {
			return ai > aj
		}
		return active[i].ID < active[j].ID
	})

	passed := uint64(a.now.Sub(st.Dynamic.LastBudgetTime))
	for _, b := range active {
		if budget <= 0 {
			break
		}
		requested, err := wide.MulDiv(uint64(b.DailyPay), passed, inter.SecondsPerDay)
		if err != nil {
			return budget, fmt.Errorf("benefactor %d pay: %w", b.ID, err)
		}
		pay := budget
		if requested < uint64(budget) {
			pay = inter.Share(requested)
		}
		if err := ApplyPayout(st, b, pay, a.now); err != nil {
			return budget, err
		}
		budget -= pay
		a.log.WithFields(logrus.Fields{"benefactor": b.ID, "pay": pay}).Debug("Benefactor paid")
	}
	return budget, nil
}
