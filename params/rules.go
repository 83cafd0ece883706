// Package params defines the governance parameters that drive chain
// maintenance and the fork activation table that selects between legacy and
// current behavior.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, FakeNet)
//   - Maintenance timing rules (interval length, block interval)
//   - Voting rules (committee size limits, vote decay constants)
//   - Immutable minimums fixed at genesis
//   - Economic parameters (producer pay, benefactor budget, reserve release rate)
//   - Fork activation times, resolved once per interval into a Ruleset
//
// The Rules type is read-only input to a maintenance pass. It is changed only
// by the governance-update mechanism, which lives outside this module.
package params

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rony4d/go-dxp-maint/inter"
)

// Network identification constants
const (
	MainNetworkID uint64 = 0xd0
	TestNetworkID uint64 = 0xd1
	FakeNetworkID uint64 = 0xd2

	// Precision is the number of indivisible units in one whole core token.
	Precision inter.Share = 100000

	// CollateralRatioDenom is the denominator of collateral ratios in feeds.
	CollateralRatioDenom = 1000

	// Percent100 is 100% in the basis-point units used by percentage options.
	Percent100 = 10000
)

// Rules describes the complete set of governance parameters one maintenance
// pass reads.
type Rules struct {
	Name      string // Network name identifier (e.g., "main", "test", "fake")
	NetworkID uint64 // Numeric network identifier

	// Maintenance timing
	Maintenance MaintenanceRules

	// Voting options: committee size caps and vote decay
	Voting VotingRules

	// Immutable options fixed at genesis
	Immutable ImmutableRules

	// Economy options: producer pay, benefactor budget, reserve release
	Economy EconomyRules

	// Forks holds the activation time of every behavior change
	Forks Forks
}

// MaintenanceRules controls when maintenance runs.
type MaintenanceRules struct {
	// Interval is the length of a maintenance interval in seconds.
	Interval uint32

	// BlockInterval is the target number of seconds between blocks.
	BlockInterval uint8

	// SkipSlots is the number of block slots skipped right after maintenance.
	SkipSlots uint8
}

// DecayRules is the staged decay schedule of one vote kind. Stake keeps full
// power for FullPowerSeconds after the last vote change, then loses
// 1/RecalcSteps of its value every SecondsPerStep until it reaches zero.
type DecayRules struct {
	FullPowerSeconds uint32
	RecalcSteps      uint32
	SecondsPerStep   uint32
}

// TotalRecalcSeconds is the length of the decaying window after full power.
func (d DecayRules) TotalRecalcSeconds() uint32 {
	if d.RecalcSteps == 0 {
		return 0
	}
	return (d.RecalcSteps - 1) * d.SecondsPerStep
}

// VotingRules limits committee sizes and configures vote decay per kind.
type VotingRules struct {
	// MaxBlockProducerCount caps the elected block producer set.
	MaxBlockProducerCount uint16

	// MaxCouncilCount caps the elected council.
	MaxCouncilCount uint16

	// CountNonMemberVotes lets accounts without a membership vote.
	CountNonMemberVotes bool

	BlockProducerDecay DecayRules
	CouncilDecay       DecayRules
	BenefactorDecay    DecayRules
	DelegatorDecay     DecayRules
}

// ImmutableRules are fixed at genesis and never change.
type ImmutableRules struct {
	MinBlockProducerCount uint16
	MinCouncilCount       uint16
}

// EconomyRules contains the parameters of the interval budget.
type EconomyRules struct {
	// BlockProducerPayPerBlock is paid to the producer of every block.
	BlockProducerPayPerBlock inter.Share

	// BenefactorBudgetPerDay caps the daily payout to all benefactors.
	BenefactorBudgetPerDay inter.Share

	// CoreAssetCycleRate / 2^CoreAssetCycleRateBits is the fraction of the
	// reserve released per second.
	CoreAssetCycleRate     uint64
	CoreAssetCycleRateBits uint8

	// Fee-backed asset fee split, in basis points. The issuer receives the rest.
	FBANetworkPercent uint16
	FBABuybackPercent uint16
}

var (
	ErrInvalidInterval  = errors.New("maintenance interval must be a positive multiple of the block interval")
	ErrInvalidCommittee = errors.New("committee maximum below immutable minimum")
	ErrInvalidDecay     = errors.New("decay rules need at least one step of non-zero length")
	ErrInvalidEconomy   = errors.New("invalid economy rules")
)

// Validate checks the internal consistency of the rules.
func (r Rules) Validate() error {
	m := r.Maintenance
	if m.Interval == 0 || m.BlockInterval == 0 || m.Interval%uint32(m.BlockInterval) != 0 {
		return ErrInvalidInterval
	}
	if r.Voting.MaxBlockProducerCount < r.Immutable.MinBlockProducerCount ||
		r.Voting.MaxCouncilCount < r.Immutable.MinCouncilCount {
		return ErrInvalidCommittee
	}
	for name, d := range map[string]DecayRules{
		"blockproducer": r.Voting.BlockProducerDecay,
		"council":       r.Voting.CouncilDecay,
		"benefactor":    r.Voting.BenefactorDecay,
		"delegator":     r.Voting.DelegatorDecay,
	} {
		if d.RecalcSteps == 0 || d.SecondsPerStep == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidDecay, name)
		}
	}
	e := r.Economy
	if e.CoreAssetCycleRateBits >= 64 || e.BlockProducerPayPerBlock < 0 || e.BenefactorBudgetPerDay < 0 ||
		uint32(e.FBANetworkPercent)+uint32(e.FBABuybackPercent) > Percent100 {
		return ErrInvalidEconomy
	}
	return nil
}

// Copy returns an independent copy. Rules hold no references, so this is a
// plain value copy.
func (r Rules) Copy() Rules {
	return r
}

// String returns the rules as JSON.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}

// MainNetRules returns the production network parameters.
func MainNetRules() Rules {
	return Rules{
		Name:        "main",
		NetworkID:   MainNetworkID,
		Maintenance: DefaultMaintenanceRules(),
		Voting:      DefaultVotingRules(),
		Immutable:   DefaultImmutableRules(),
		Economy:     DefaultEconomyRules(),
		Forks:       MainNetForks(),
	}
}

// TestNetRules returns the test network parameters. They match mainnet except
// for the fork schedule.
func TestNetRules() Rules {
	r := MainNetRules()
	r.Name = "test"
	r.NetworkID = TestNetworkID
	r.Forks = TestNetForks()
	return r
}

// FakeNetRules returns parameters for local networks:
//   - hourly maintenance instead of daily
//   - small committees
//   - every fork active from genesis
func FakeNetRules() Rules {
	r := MainNetRules()
	r.Name = "fake"
	r.NetworkID = FakeNetworkID
	r.Maintenance.Interval = 3600
	r.Voting.MaxBlockProducerCount = 21
	r.Voting.MaxCouncilCount = 21
	r.Immutable.MinBlockProducerCount = 1
	r.Immutable.MinCouncilCount = 1
	r.Forks = Forks{}
	return r
}

// DefaultMaintenanceRules returns daily maintenance with 3-second blocks.
func DefaultMaintenanceRules() MaintenanceRules {
	return MaintenanceRules{
		Interval:      86400,
		BlockInterval: 3,
		SkipSlots:     3,
	}
}

// DefaultDecayRules returns the staged decay used for every vote kind:
// full power for 360 days, then eight 45-day steps.
func DefaultDecayRules() DecayRules {
	return DecayRules{
		FullPowerSeconds: 360 * 86400,
		RecalcSteps:      8,
		SecondsPerStep:   45 * 86400,
	}
}

// DefaultVotingRules returns the mainnet voting configuration.
func DefaultVotingRules() VotingRules {
	return VotingRules{
		MaxBlockProducerCount: 1001,
		MaxCouncilCount:       1001,
		CountNonMemberVotes:   true,
		BlockProducerDecay:    DefaultDecayRules(),
		CouncilDecay:          DefaultDecayRules(),
		BenefactorDecay:       DefaultDecayRules(),
		DelegatorDecay:        DefaultDecayRules(),
	}
}

// DefaultImmutableRules returns the genesis minimums.
func DefaultImmutableRules() ImmutableRules {
	return ImmutableRules{
		MinBlockProducerCount: 11,
		MinCouncilCount:       11,
	}
}

// DefaultEconomyRules returns the mainnet budget configuration.
func DefaultEconomyRules() EconomyRules {
	return EconomyRules{
		BlockProducerPayPerBlock: 10 * Precision,
		BenefactorBudgetPerDay:   500000 * Precision,
		CoreAssetCycleRate:       17,
		CoreAssetCycleRateBits:   32,
		FBANetworkPercent:        2000,
		FBABuybackPercent:        6000,
	}
}
