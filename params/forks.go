package params

import (
	"sort"

	"github.com/rony4d/go-dxp-maint/inter"
)

// Upgrade is a single behavior change, identified by a bit.
type Upgrade uint16

const (
	// NoNegativeBenefactorVotes stops votes against benefactors from counting.
	NoNegativeBenefactorVotes Upgrade = 1 << iota
	// VoteCounterAuthority switches authority weights to the vote counter.
	VoteCounterAuthority
	// FeedPruning removes expired feeds during maintenance.
	FeedPruning
	// VoteDecay enables staged decay of stale votes.
	VoteDecay
	// LiquidStakeExclusion stops liquid and cashback balances from voting.
	LiquidStakeExclusion
	// CollateralizationCache keeps derived collateralization prices with the median feed.
	CollateralizationCache
	// MaxSupplyFix raises max supply to current supply where it fell behind.
	MaxSupplyFix
	// FeedAssetCleanup drops feeds quoted in the wrong backing asset.
	FeedAssetCleanup
	// LifetimeMembership converts annual members to lifetime members.
	LifetimeMembership
	// NegativeBalanceFix removes negative balances and corrects the supply.
	NegativeBalanceFix

	lastUpgrade = NegativeBalanceFix
)

var upgradeNames = map[Upgrade]string{
	NoNegativeBenefactorVotes: "no-negative-benefactor-votes",
	VoteCounterAuthority:      "vote-counter-authority",
	FeedPruning:               "feed-pruning",
	VoteDecay:                 "vote-decay",
	LiquidStakeExclusion:      "liquid-stake-exclusion",
	CollateralizationCache:    "collateralization-cache",
	MaxSupplyFix:              "max-supply-fix",
	FeedAssetCleanup:          "feed-asset-cleanup",
	LifetimeMembership:        "lifetime-membership",
	NegativeBalanceFix:        "negative-balance-fix",
}

func (u Upgrade) String() string {
	return upgradeNames[u]
}

// Forks holds the activation time of each upgrade. A zero time means active
// since genesis; inter.MaxTimestamp means never.
type Forks struct {
	NoNegativeBenefactorVotes inter.Timestamp
	VoteCounterAuthority      inter.Timestamp
	FeedPruning               inter.Timestamp
	VoteDecay                 inter.Timestamp
	LiquidStakeExclusion      inter.Timestamp
	CollateralizationCache    inter.Timestamp
	MaxSupplyFix              inter.Timestamp
	FeedAssetCleanup          inter.Timestamp
	LifetimeMembership        inter.Timestamp
	NegativeBalanceFix        inter.Timestamp
}

// UpgradeTime specifies at which time an upgrade becomes active.
type UpgradeTime struct {
	Upgrade Upgrade
	Time    inter.Timestamp
}

// Table returns the activation table ordered by time, ties by upgrade bit.
func (f Forks) Table() []UpgradeTime {
	tt := []UpgradeTime{
		{NoNegativeBenefactorVotes, f.NoNegativeBenefactorVotes},
		{VoteCounterAuthority, f.VoteCounterAuthority},
		{FeedPruning, f.FeedPruning},
		{VoteDecay, f.VoteDecay},
		{LiquidStakeExclusion, f.LiquidStakeExclusion},
		{CollateralizationCache, f.CollateralizationCache},
		{MaxSupplyFix, f.MaxSupplyFix},
		{FeedAssetCleanup, f.FeedAssetCleanup},
		{LifetimeMembership, f.LifetimeMembership},
		{NegativeBalanceFix, f.NegativeBalanceFix},
	}
	sort.SliceStable(tt, func(i, j int) bool {
		if tt[i].Time != tt[j].Time {
			return tt[i].Time < tt[j].Time
		}
		return tt[i].Upgrade < tt[j].Upgrade
	})
	return tt
}

// Activation returns the activation time of u.
func (f Forks) Activation(u Upgrade) inter.Timestamp {
	for _, ut := range f.Table() {
		if ut.Upgrade == u {
			return ut.Time
		}
	}
	return inter.MaxTimestamp
}

// Crossed reports whether the activation of u lies in [from, to), i.e. the
// maintenance moving the schedule from "from" to "to" is the first one to run
// under the upgrade.
func (f Forks) Crossed(u Upgrade, from, to inter.Timestamp) bool {
	at := f.Activation(u)
	return at != inter.MaxTimestamp && from <= at && to > at
}

// Ruleset is the set of upgrades active at one point in time. It is resolved
// once per maintenance pass and passed to every component.
type Ruleset struct {
	enabled Upgrade
}

// Resolve walks the activation table and enables every upgrade whose time is
// not after now.
func (f Forks) Resolve(now inter.Timestamp) Ruleset {
	var rs Ruleset
	for _, ut := range f.Table() {
		if ut.Time == inter.MaxTimestamp || ut.Time > now {
			break
		}
		rs.enabled |= ut.Upgrade
	}
	return rs
}

// NewRuleset builds a ruleset with exactly the given upgrades enabled.
func NewRuleset(uu ...Upgrade) Ruleset {
	var rs Ruleset
	for _, u := range uu {
		rs.enabled |= u
	}
	return rs
}

// Has reports whether u is active.
func (rs Ruleset) Has(u Upgrade) bool {
	return rs.enabled&u != 0
}

func (rs Ruleset) NegativeBenefactorVotes() bool { return !rs.Has(NoNegativeBenefactorVotes) }
func (rs Ruleset) VoteCounterAuthority() bool    { return rs.Has(VoteCounterAuthority) }
func (rs Ruleset) FeedPruning() bool             { return rs.Has(FeedPruning) }
func (rs Ruleset) VoteDecay() bool               { return rs.Has(VoteDecay) }
func (rs Ruleset) LiquidStakeExclusion() bool    { return rs.Has(LiquidStakeExclusion) }
func (rs Ruleset) CollateralizationCache() bool  { return rs.Has(CollateralizationCache) }

// Names lists the active upgrades, for logging.
func (rs Ruleset) Names() []string {
	var names []string
	for u := Upgrade(1); u != 0 && u <= lastUpgrade; u <<= 1 {
		if rs.Has(u) {
			names = append(names, u.String())
		}
	}
	return names
}

// MainNetForks returns the mainnet activation schedule.
func MainNetForks() Forks {
	return Forks{
		FeedPruning:               1446652800,
		VoteCounterAuthority:      1446652800,
		NoNegativeBenefactorVotes: 1458752400,
		LifetimeMembership:        1458752400,
		FeedAssetCleanup:          1521036000,
		CollateralizationCache:    1600000000,
		MaxSupplyFix:              1600000000,
		VoteDecay:                 1631799600,
		NegativeBalanceFix:        1631799600,
		LiquidStakeExclusion:      1679407200,
	}
}

// TestNetForks returns the testnet activation schedule.
func TestNetForks() Forks {
	return Forks{
		FeedPruning:               1446652800,
		VoteCounterAuthority:      1446652800,
		NoNegativeBenefactorVotes: 1458752400,
		LifetimeMembership:        1458752400,
		FeedAssetCleanup:          1521036000,
		CollateralizationCache:    1590000000,
		MaxSupplyFix:              1590000000,
		VoteDecay:                 1630000000,
		NegativeBalanceFix:        1630000000,
		LiquidStakeExclusion:      1675000000,
	}
}

// LegacyForks disables every upgrade.
func LegacyForks() Forks {
	never := inter.MaxTimestamp
	return Forks{never, never, never, never, never, never, never, never, never, never}
}
