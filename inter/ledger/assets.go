package ledger

import (
	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

const percent100 = 10000

// Asset is a user-issued or market-issued asset.
type Asset struct {
	ID        inter.AssetID
	Symbol    string
	Issuer    inter.AccountID
	Precision uint8
	MaxSupply inter.Share

	// BuybackAccount receives the buyback share of fee-backed asset fees.
	BuybackAccount *inter.AccountID `rlp:"nil"`

	Dynamic AssetDynamicData

	// SmartToken is set for market-issued assets only.
	SmartToken *SmartTokenData `rlp:"nil"`
}

// AssetDynamicData holds the frequently changing asset counters.
type AssetDynamicData struct {
	CurrentSupply   inter.Share
	AccumulatedFees inter.Share
	FeePool         inter.Share
}

// IsMarketIssued reports whether the asset is collateral backed.
func (a *Asset) IsMarketIssued() bool {
	return a.SmartToken != nil
}

// Copy returns a deep copy.
func (a Asset) Copy() Asset {
	cp := a
	if a.BuybackAccount != nil {
		id := *a.BuybackAccount
		cp.BuybackAccount = &id
	}
	if a.SmartToken != nil {
		st := a.SmartToken.Copy()
		cp.SmartToken = &st
	}
	return cp
}

// SmartTokenOptions are the issuer-controlled settings of a market-issued asset.
type SmartTokenOptions struct {
	FeedLifetimeSec uint32
	MinimumFeeds    uint8

	ForceSettlementDelaySec uint32
	// ForceSettlementOffsetPercent is deducted from what a settler receives.
	ForceSettlementOffsetPercent uint16
	// MaximumForceSettlementVolume caps settlement per interval, in basis
	// points of the supply.
	MaximumForceSettlementVolume uint16

	ShortBackingAsset inter.AssetID

	FedByProducers     bool
	FedByCouncil       bool
	DisableForceSettle bool
}

// PriceFeed is one published price together with its collateral ratios.
// Ratios are in units of 1/1000.
type PriceFeed struct {
	SettlementPrice            inter.Price
	CoreExchangeRate           inter.Price
	MaintenanceCollateralRatio uint16
	MaximumShortSqueezeRatio   uint16
	InitialCollateralRatio     uint16
}

// FeedEntry is a feed together with its publisher and publication time.
type FeedEntry struct {
	Publisher inter.AccountID
	Published inter.Timestamp
	Feed      PriceFeed
}

// SmartTokenData is the market state of a market-issued asset.
type SmartTokenData struct {
	Options          SmartTokenOptions
	PredictionMarket bool

	// Feeds is sorted by publisher.
	Feeds []FeedEntry

	CurrentFeed                         PriceFeed
	CurrentFeedPublicationTime          inter.Timestamp
	CurrentMaintenanceCollateralization inter.Price
	CurrentInitialCollateralization     inter.Price

	// ForceSettledVolume is what force settlement consumed this interval.
	ForceSettledVolume inter.Share

	// SettlementPrice and SettlementFund are set by a global settlement.
	SettlementPrice inter.Price
	SettlementFund  inter.Share
}

// Copy returns a deep copy.
func (s SmartTokenData) Copy() SmartTokenData {
	cp := s
	cp.Feeds = append([]FeedEntry(nil), s.Feeds...)
	return cp
}

// HasSettlement reports whether the asset was globally settled.
func (s *SmartTokenData) HasSettlement() bool {
	return !s.SettlementPrice.IsNull()
}

// MaxForceSettlementVolume returns the interval cap for the given supply,
// rounded down.
func (s *SmartTokenData) MaxForceSettlementVolume(supply inter.Share) (inter.Share, error) {
	if s.Options.MaximumForceSettlementVolume == 0 || supply <= 0 {
		return 0, nil
	}
	if s.Options.MaximumForceSettlementVolume >= percent100 {
		return supply, nil
	}
	v, err := wide.MulDiv(uint64(supply), uint64(s.Options.MaximumForceSettlementVolume), percent100)
	if err != nil {
		return 0, err
	}
	return inter.Share(v), nil
}

// CallOrder is a collateralized debt position.
type CallOrder struct {
	ID         inter.CallOrderID
	Borrower   inter.AccountID
	Debt       inter.AssetAmount
	Collateral inter.AssetAmount
}

// ForceSettlement is a pending request to redeem debt for collateral.
type ForceSettlement struct {
	ID             inter.SettlementID
	Owner          inter.AccountID
	Balance        inter.AssetAmount
	SettlementDate inter.Timestamp
}

// CollateralBid offers collateral to take over part of the debt of a globally
// settled asset.
type CollateralBid struct {
	ID                   inter.CollateralBidID
	Bidder               inter.AccountID
	AdditionalCollateral inter.AssetAmount
	DebtCovered          inter.AssetAmount
}

// FBAAccumulator collects fees of a fee-backed asset operation.
type FBAAccumulator struct {
	ID              inter.AccumulatorID
	AccumulatedFees inter.Share
	DesignatedAsset *inter.AssetID `rlp:"nil"`
}

// Buyback marks an asset whose buyback account spends its holdings on it.
type Buyback struct {
	Asset inter.AssetID
}
