package smarttoken

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
)

const (
	now    inter.Timestamp = 1700000000
	usd    inter.AssetID   = 1
	paul   inter.AccountID = 20
	mike   inter.AccountID = 21
	rachel inter.AccountID = 22
)

type fakeMarket struct {
	checked []inter.AssetID
}

func (m *fakeMarket) CheckCallOrders(_ *ledger.State, asset inter.AssetID) error {
	m.checked = append(m.checked, asset)
	return nil
}

func price(debt, collateral inter.Share) inter.Price {
	return inter.Price{Base: usd.Amount(debt), Quote: inter.CoreAsset.Amount(collateral)}
}

func feed(debt, collateral inter.Share) ledger.PriceFeed {
	return ledger.PriceFeed{
		SettlementPrice:            price(debt, collateral),
		CoreExchangeRate:           price(debt, collateral),
		MaintenanceCollateralRatio: 1750,
		MaximumShortSqueezeRatio:   1100,
	}
}

func settleState() *ledger.State {
	f := feed(101, 5)
	return &ledger.State{
		Assets: []ledger.Asset{
			{ID: inter.CoreAsset, MaxSupply: inter.MaxShareSupply},
			{
				ID:        usd,
				Symbol:    "USD",
				MaxSupply: inter.MaxShareSupply,
				Dynamic:   ledger.AssetDynamicData{CurrentSupply: 970},
				SmartToken: &ledger.SmartTokenData{
					Options: ledger.SmartTokenOptions{
						FeedLifetimeSec:              86400,
						MinimumFeeds:                 1,
						MaximumForceSettlementVolume: 2000,
						ShortBackingAsset:            inter.CoreAsset,
					},
					Feeds:                      []ledger.FeedEntry{{Publisher: 30, Published: now - 100, Feed: f}},
					CurrentFeed:                f,
					CurrentFeedPublicationTime: now - 100,
				},
			},
		},
		Balances: []ledger.Balance{{Owner: rachel, Asset: inter.CoreAsset, Amount: 1}},
		CallOrders: []ledger.CallOrder{
			{ID: 0, Borrower: paul, Debt: usd.Amount(962), Collateral: inter.CoreAsset.Amount(99)},
			{ID: 1, Borrower: mike, Debt: usd.Amount(8), Collateral: inter.CoreAsset.Amount(11)},
		},
		ForceSettlements: []ledger.ForceSettlement{
			{ID: 3, Owner: rachel, Balance: usd.Amount(3), SettlementDate: now},
			{ID: 4, Owner: rachel, Balance: usd.Amount(434), SettlementDate: now},
			{ID: 5, Owner: rachel, Balance: usd.Amount(5), SettlementDate: now},
		},
		NextCallOrderID: 2,
	}
}

func run(t *testing.T, st *ledger.State, rs params.Ruleset, market CallChecker) *test.Hook {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	require.NoError(t, New(st, now, rs, market, logger).Run())
	return hook
}

func TestForceSettlementCap(t *testing.T) {
	st := settleState()
	run(t, st, params.NewRuleset(params.FeedPruning, params.CollateralizationCache), nil)

	require.Len(t, st.ForceSettlements, 2)
	assert.Equal(t, inter.SettlementID(4), st.ForceSettlements[0].ID)
	assert.Equal(t, inter.Share(243), st.ForceSettlements[0].Balance.Amount)
	assert.Equal(t, inter.Share(5), st.ForceSettlements[1].Balance.Amount)

	assert.Equal(t, inter.Share(10), st.BalanceOf(rachel, inter.CoreAsset))
	assert.Equal(t, inter.Share(768), st.CallOrder(0).Debt.Amount)
	assert.Equal(t, inter.Share(90), st.CallOrder(0).Collateral.Amount)
	assert.Equal(t, inter.Share(8), st.CallOrder(1).Debt.Amount)

	a := st.Asset(usd)
	assert.Equal(t, inter.Share(776), a.Dynamic.CurrentSupply)
	assert.Equal(t, inter.Share(194), a.SmartToken.ForceSettledVolume)
}

func TestForceSettlementClosesCallOrder(t *testing.T) {
	st := settleState()
	st.Assets[1].SmartToken.Options.MaximumForceSettlementVolume = params.Percent100
	st.Assets[1].SmartToken.Options.ForceSettlementOffsetPercent = 100
	st.Assets[1].Dynamic.CurrentSupply = 10
	st.Assets[1].SmartToken.Feeds[0].Feed = feed(1, 1)
	st.CallOrders = []ledger.CallOrder{{ID: 0, Borrower: paul, Debt: usd.Amount(10), Collateral: inter.CoreAsset.Amount(30)}}
	st.ForceSettlements = []ledger.ForceSettlement{{ID: 0, Owner: rachel, Balance: usd.Amount(10), SettlementDate: now}}

	market := &fakeMarket{}
	run(t, st, params.NewRuleset(), market)

	assert.Equal(t, []inter.AssetID{usd}, market.checked)
	assert.Empty(t, st.CallOrders)
	assert.Empty(t, st.ForceSettlements)
	// 10 at 1:1 minus 1% offset.
	assert.Equal(t, inter.Share(1+9), st.BalanceOf(rachel, inter.CoreAsset))
	assert.Equal(t, inter.Share(21), st.BalanceOf(paul, inter.CoreAsset))
	assert.Zero(t, st.Asset(usd).Dynamic.CurrentSupply)
}

func TestForceSettlementNotDue(t *testing.T) {
	st := settleState()
	for i := range st.ForceSettlements {
		st.ForceSettlements[i].SettlementDate = now + 1
	}
	run(t, st, params.NewRuleset(), nil)
	assert.Len(t, st.ForceSettlements, 3)
	assert.Zero(t, st.Asset(usd).SmartToken.ForceSettledVolume)
}

func TestForceSettlementSkipped(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		st := settleState()
		st.Assets[1].SmartToken.Options.DisableForceSettle = true
		hook := run(t, st, params.NewRuleset(), nil)
		assert.Len(t, st.ForceSettlements, 3)
		assert.Equal(t, "Force settlement disabled, requests skipped", hook.LastEntry().Message)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})
	t.Run("no feed", func(t *testing.T) {
		st := settleState()
		st.Assets[1].SmartToken.Feeds = nil
		hook := run(t, st, params.NewRuleset(), nil)
		assert.Len(t, st.ForceSettlements, 3)
		assert.Equal(t, "No price feed, force settlement skipped", hook.LastEntry().Message)
	})
}

func TestSettleFromFund(t *testing.T) {
	st := settleState()
	data := st.Assets[1].SmartToken
	data.Options.MaximumForceSettlementVolume = params.Percent100
	data.SettlementPrice = price(100, 50)
	data.SettlementFund = 50
	st.Assets[1].Dynamic.CurrentSupply = 100
	st.CallOrders = nil
	st.ForceSettlements = []ledger.ForceSettlement{
		{ID: 0, Owner: rachel, Balance: usd.Amount(41), SettlementDate: now},
		{ID: 1, Owner: mike, Balance: usd.Amount(59), SettlementDate: now},
	}

	run(t, st, params.NewRuleset(), nil)

	assert.Empty(t, st.ForceSettlements)
	assert.Equal(t, inter.Share(1+20), st.BalanceOf(rachel, inter.CoreAsset))
	assert.Equal(t, inter.Share(30), st.BalanceOf(mike, inter.CoreAsset), "last settler takes the whole fund")
	assert.Zero(t, data.SettlementFund)
	assert.Zero(t, st.Asset(usd).Dynamic.CurrentSupply)
}

func TestMedianFeed(t *testing.T) {
	a, b, c := feed(100, 5), feed(100, 4), feed(100, 6)
	a.MaintenanceCollateralRatio, b.MaintenanceCollateralRatio, c.MaintenanceCollateralRatio = 1500, 2000, 1750
	entries := []ledger.FeedEntry{
		{Publisher: 1, Published: now - 10, Feed: a},
		{Publisher: 2, Published: now - 20, Feed: b},
		{Publisher: 3, Published: now - 30, Feed: c},
		{Publisher: 4, Published: now - 3600, Feed: feed(1, 1)},
		{Publisher: 5, Published: 0, Feed: feed(1, 1)},
	}

	median, published := MedianFeed(entries, now, 3600, 1)
	assert.Equal(t, price(100, 5), median.SettlementPrice)
	assert.Equal(t, uint16(1750), median.MaintenanceCollateralRatio)
	assert.Equal(t, now-30, published)

	median, published = MedianFeed(entries, now, 3600, 4)
	assert.True(t, median.SettlementPrice.IsNull())
	assert.Equal(t, now, published)
}

func TestFeedPruning(t *testing.T) {
	for _, tt := range []struct {
		name string
		rs   params.Ruleset
		want int
	}{
		{"before fork stale feeds stay", params.NewRuleset(), 2},
		{"after fork stale feeds go", params.NewRuleset(params.FeedPruning), 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			st := settleState()
			st.ForceSettlements = nil
			data := st.Assets[1].SmartToken
			data.Options.FedByProducers = true
			data.Feeds = append(data.Feeds, ledger.FeedEntry{Publisher: 31, Published: now - 86401, Feed: feed(1, 1)})

			run(t, st, tt.rs, nil)
			assert.Len(t, data.Feeds, tt.want)
			assert.Equal(t, feed(101, 5), data.CurrentFeed)
		})
	}
}

func TestCollateralizationCache(t *testing.T) {
	st := settleState()
	st.ForceSettlements = nil
	run(t, st, params.NewRuleset(params.CollateralizationCache), nil)
	data := st.Asset(usd).SmartToken
	assert.Equal(t, price(101*1000, 5*1750), data.CurrentMaintenanceCollateralization)

	st = settleState()
	st.ForceSettlements = nil
	run(t, st, params.NewRuleset(), nil)
	assert.True(t, st.Asset(usd).SmartToken.CurrentMaintenanceCollateralization.IsNull())
}

func bidState() *ledger.State {
	st := settleState()
	st.ForceSettlements = nil
	st.CallOrders = nil
	st.NextCallOrderID = 0
	st.Assets[1].Dynamic.CurrentSupply = 100
	data := st.Assets[1].SmartToken
	data.SettlementPrice = price(100, 40)
	data.SettlementFund = 40
	data.Feeds[0].Feed = feed(100, 50)
	data.CurrentFeed = feed(100, 50)
	st.CollateralBids = []ledger.CollateralBid{
		{ID: 0, Bidder: 40, AdditionalCollateral: inter.CoreAsset.Amount(1), DebtCovered: usd.Amount(100)},
		{ID: 1, Bidder: 41, AdditionalCollateral: inter.CoreAsset.Amount(100), DebtCovered: usd.Amount(50)},
		{ID: 2, Bidder: 42, AdditionalCollateral: inter.CoreAsset.Amount(200), DebtCovered: usd.Amount(60)},
	}
	return st
}

func TestCollateralBidsRevive(t *testing.T) {
	st := bidState()
	run(t, st, params.NewRuleset(), nil)

	data := st.Asset(usd).SmartToken
	assert.False(t, data.HasSettlement())
	assert.Zero(t, data.SettlementFund)
	assert.Empty(t, st.CollateralBids)

	require.Len(t, st.CallOrders, 2)
	assert.Equal(t, ledger.CallOrder{ID: 0, Borrower: 42, Debt: usd.Amount(60), Collateral: inter.CoreAsset.Amount(224)}, st.CallOrders[0])
	assert.Equal(t, ledger.CallOrder{ID: 1, Borrower: 41, Debt: usd.Amount(40), Collateral: inter.CoreAsset.Amount(116)}, st.CallOrders[1])
	assert.Equal(t, inter.Share(1), st.BalanceOf(40, inter.CoreAsset), "losing bid refunded")
}

func TestCollateralBidsInsufficient(t *testing.T) {
	st := bidState()
	st.CollateralBids = st.CollateralBids[:2]
	run(t, st, params.NewRuleset(), nil)

	data := st.Asset(usd).SmartToken
	assert.True(t, data.HasSettlement())
	assert.Equal(t, inter.Share(40), data.SettlementFund)
	assert.Len(t, st.CollateralBids, 2)
	assert.Empty(t, st.CallOrders)
}

func TestCleanupFeedAssets(t *testing.T) {
	logger, _ := test.NewNullLogger()
	wrong := ledger.PriceFeed{SettlementPrice: inter.Price{Base: usd.Amount(1), Quote: inter.AssetID(7).Amount(1)}}

	st := settleState()
	data := st.Assets[1].SmartToken
	data.Feeds = append(data.Feeds, ledger.FeedEntry{Publisher: 31, Published: now, Feed: wrong})
	CleanupFeedAssets(st, now, params.NewRuleset(), logger)
	require.Len(t, data.Feeds, 2)
	assert.True(t, data.Feeds[1].Feed.SettlementPrice.IsNull(), "unfed asset keeps a nulled feed")

	st = settleState()
	data = st.Assets[1].SmartToken
	data.Options.FedByCouncil = true
	data.Feeds = append(data.Feeds, ledger.FeedEntry{Publisher: 31, Published: now, Feed: wrong})
	CleanupFeedAssets(st, now, params.NewRuleset(), logger)
	assert.Len(t, data.Feeds, 1)
	assert.Equal(t, feed(101, 5), data.CurrentFeed)
}
