package budget

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
)

const now inter.Timestamp = 1700000000

func budgetState() *ledger.State {
	st := &ledger.State{
		Accounts: []ledger.Account{{ID: inter.NullAccount}, {ID: 40}},
		Assets: []ledger.Asset{{
			ID:        inter.CoreAsset,
			MaxSupply: inter.MaxShareSupply,
			Dynamic: ledger.AssetDynamicData{
				CurrentSupply:   400000000000000,
				AccumulatedFees: 1000000,
			},
		}},
		VestingBalances: []ledger.VestingBalance{{
			ID:      0,
			Owner:   40,
			Balance: inter.CoreAsset.Amount(0),
			Policy:  ledger.CDDPolicy{VestingSeconds: 86400},
		}},
	}
	st.Dynamic.BlockProducerBudget = 2000000
	st.Dynamic.LastBudgetTime = now - 3600
	st.Dynamic.NextMaintenanceTime = now + 3600
	return st
}

func benefactor(id inter.BenefactorID, daily inter.Share, votesFor, votesAgainst uint64, p ledger.Payout) ledger.Benefactor {
	return ledger.Benefactor{
		ID:                id,
		Account:           40,
		WorkBegin:         now - 86400,
		WorkEnd:           now + 86400,
		DailyPay:          daily,
		Payout:            p,
		TotalVotesFor:     votesFor,
		TotalVotesAgainst: votesAgainst,
	}
}

func TestPayBenefactorsHalfDay(t *testing.T) {
	logger, _ := test.NewNullLogger()
	st := budgetState()
	st.Dynamic.LastBudgetTime = now - 43200
	st.Benefactors = []ledger.Benefactor{
		benefactor(0, 100, 5, 0, ledger.Payout{Refund: &ledger.RefundPayout{}}),
	}
	supply := st.CoreAsset().Dynamic.CurrentSupply

	left, err := New(st, params.FakeNetRules(), now, logger).PayBenefactors(1000)
	require.NoError(t, err)
	assert.Equal(t, inter.Share(950), left)
	assert.Equal(t, inter.Share(50), st.Benefactors[0].Payout.Refund.TotalBurned)
	assert.Equal(t, supply-50, st.CoreAsset().Dynamic.CurrentSupply)
}

func TestPayBenefactorsOrder(t *testing.T) {
	logger, _ := test.NewNullLogger()
	st := budgetState()
	st.Dynamic.LastBudgetTime = now - 86400
	st.Benefactors = []ledger.Benefactor{
		benefactor(0, 300, 10, 0, ledger.Payout{Burn: &ledger.BurnPayout{}}),
		benefactor(1, 300, 20, 5, ledger.Payout{Burn: &ledger.BurnPayout{}}),
		benefactor(2, 300, 15, 0, ledger.Payout{Burn: &ledger.BurnPayout{}}),
		benefactor(3, 300, 50, 0, ledger.Payout{Burn: &ledger.BurnPayout{}}),
		benefactor(4, 300, 5, 5, ledger.Payout{Burn: &ledger.BurnPayout{}}),
	}
	st.Benefactors[3].WorkEnd = now - 1

	left, err := New(st, params.FakeNetRules(), now, logger).PayBenefactors(500)
	require.NoError(t, err)
	assert.Zero(t, left)

	// Equal approval of 15: the lower id is paid in full, the next gets the rest.
	assert.Equal(t, inter.Share(300), st.Benefactors[1].Payout.Burn.TotalBurned)
	assert.Equal(t, inter.Share(200), st.Benefactors[2].Payout.Burn.TotalBurned)
	assert.Zero(t, st.Benefactors[0].Payout.Burn.TotalBurned)
	assert.Zero(t, st.Benefactors[3].Payout.Burn.TotalBurned, "outside work window")
	assert.Zero(t, st.Benefactors[4].Payout.Burn.TotalBurned, "zero approval")
	assert.Equal(t, inter.Share(500), st.BalanceOf(inter.NullAccount, inter.CoreAsset))
}

func TestApplyPayout(t *testing.T) {
	t.Run("vesting", func(t *testing.T) {
		st := budgetState()
		b := benefactor(0, 0, 1, 0, ledger.Payout{Vesting: &ledger.VestingPayout{Balance: 0}})
		require.NoError(t, ApplyPayout(st, &b, 70, now))
		assert.Equal(t, inter.Share(70), st.VestingBalance(0).Balance.Amount)
	})
	t.Run("missing vesting balance", func(t *testing.T) {
		st := budgetState()
		b := benefactor(0, 0, 1, 0, ledger.Payout{Vesting: &ledger.VestingPayout{Balance: 9}})
		assert.ErrorIs(t, ApplyPayout(st, &b, 70, now), ledger.ErrNotFound)
	})
	t.Run("no policy", func(t *testing.T) {
		st := budgetState()
		b := benefactor(0, 0, 1, 0, ledger.Payout{})
		assert.ErrorIs(t, ApplyPayout(st, &b, 70, now), ErrInvalidPayout)
	})
	t.Run("two policies", func(t *testing.T) {
		st := budgetState()
		b := benefactor(0, 0, 1, 0, ledger.Payout{Refund: &ledger.RefundPayout{}, Burn: &ledger.BurnPayout{}})
		assert.ErrorIs(t, ApplyPayout(st, &b, 70, now), ErrInvalidPayout)
	})
}

func TestRun(t *testing.T) {
	logger, _ := test.NewNullLogger()
	st := budgetState()
	st.Benefactors = []ledger.Benefactor{
		benefactor(0, 86400000, 1, 0, ledger.Payout{Refund: &ledger.RefundPayout{}}),
	}

	rec, err := New(st, params.FakeNetRules(), now, logger).Run()
	require.NoError(t, err)

	assert.Equal(t, uint64(3600), rec.TimeSinceLastBudget)
	assert.Equal(t, inter.Share(600000000000000), rec.FromInitialReserve)
	assert.Equal(t, inter.Share(8549541278), rec.TotalBudget)
	assert.Equal(t, inter.Share(1200000000), rec.RequestedBlockProducerBudget)
	assert.Equal(t, inter.Share(1200000000), rec.BlockProducerBudget)
	assert.Equal(t, inter.Share(2083333333), rec.BenefactorBudget)
	assert.Equal(t, inter.Share(2079733333), rec.LeftoverBenefactorFunds)
	assert.Equal(t, inter.Share(1200600000), rec.SupplyDelta)
	assert.Equal(t, rec.BlockProducerBudget+rec.BenefactorBudget-rec.LeftoverBenefactorFunds-
		rec.FromAccumulatedFees-rec.FromUnusedBlockProducerBudget, rec.SupplyDelta)

	core := st.CoreAsset()
	assert.Equal(t, inter.Share(400001197000000), core.Dynamic.CurrentSupply)
	assert.Equal(t, core.Dynamic.CurrentSupply, rec.CurrentSupply)
	assert.Zero(t, core.Dynamic.AccumulatedFees)
	assert.Equal(t, rec.BlockProducerBudget, st.Dynamic.BlockProducerBudget)
	assert.Equal(t, now, st.Dynamic.LastBudgetTime)
	require.Len(t, st.BudgetRecords, 1)
	assert.Equal(t, rec, st.BudgetRecords[0])
}

func TestRunWithoutPreviousBudget(t *testing.T) {
	logger, _ := test.NewNullLogger()
	st := budgetState()
	st.Dynamic.LastBudgetTime = 0

	rec, err := New(st, params.FakeNetRules(), now, logger).Run()
	require.NoError(t, err)
	assert.Zero(t, rec.TotalBudget)
	assert.Zero(t, rec.BlockProducerBudget)
	assert.Equal(t, inter.Share(-3000000), rec.SupplyDelta)
	assert.Equal(t, now, st.Dynamic.LastBudgetTime)
}

func TestRunFailsWithoutTimeToMaintenance(t *testing.T) {
	logger, _ := test.NewNullLogger()
	st := budgetState()
	st.Dynamic.NextMaintenanceTime = now

	_, err := New(st, params.FakeNetRules(), now, logger).Run()
	assert.ErrorIs(t, err, ErrNoTimeToMaintenance)
}

func TestRecordRounding(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("last unit released", func(t *testing.T) {
		st := budgetState()
		core := st.CoreAsset()
		core.Dynamic.CurrentSupply = core.MaxSupply - 1
		core.Dynamic.AccumulatedFees = 0
		st.Dynamic.BlockProducerBudget = 0

		rec, err := New(st, params.FakeNetRules(), now, logger).Record()
		require.NoError(t, err)
		assert.Equal(t, inter.Share(1), rec.TotalBudget)
	})

	t.Run("rate product overflow", func(t *testing.T) {
		st := budgetState()
		rules := params.FakeNetRules()
		rules.Economy.CoreAssetCycleRate = math.MaxUint64

		rec, err := New(st, rules, now, logger).Record()
		require.NoError(t, err)
		assert.Equal(t, rec.FromInitialReserve+rec.FromAccumulatedFees+rec.FromUnusedBlockProducerBudget, rec.TotalBudget)
	})
}
