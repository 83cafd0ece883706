package tally

import (
	"math/bits"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/params"
)

// Decay evaluates the staged decay of one vote kind at a fixed "now".
type Decay struct {
	fullPowerTime  inter.Timestamp
	zeroPowerTime  inter.Timestamp
	secondsPerStep uint32

	// subtract[i] is the share of stake, in basis points, lost in step i.
	subtract []uint64
}

// NewDecay prepares the decay of rules evaluated at now.
func NewDecay(rules params.DecayRules, now inter.Timestamp) Decay {
	d := Decay{
		fullPowerTime:  inter.Timestamp(now.Sub(inter.Timestamp(rules.FullPowerSeconds))),
		secondsPerStep: rules.SecondsPerStep,
	}
	d.zeroPowerTime = inter.Timestamp(d.fullPowerTime.Sub(inter.Timestamp(rules.TotalRecalcSeconds())))
	for i := uint32(1); i < rules.RecalcSteps; i++ {
		d.subtract = append(d.subtract, params.Percent100*uint64(i)/uint64(rules.RecalcSteps))
	}
	return d
}

// Apply returns the part of stake still counted for a vote last changed at
// lastVote: all of it within full power, nothing at or before zero power,
// and a step-wise reduced value in between.
func (d Decay) Apply(stake uint64, lastVote inter.Timestamp) uint64 {
	if lastVote > d.fullPowerTime {
		return stake
	}
	if lastVote <= d.zeroPowerTime || d.secondsPerStep == 0 {
		return 0
	}
	diff := uint32(d.fullPowerTime - lastVote)
	step := diff / d.secondsPerStep
	if int(step) >= len(d.subtract) {
		return 0
	}
	return stake - fraction(stake, d.subtract[step], params.Percent100)
}

// fraction returns floor(a*num/den) for num <= den, where the quotient always
// fits 64 bits.
func fraction(a, num, den uint64) uint64 {
	hi, lo := bits.Mul64(a, num)
	q, _ := bits.Div64(hi, lo, den)
	return q
}

// Decays bundles the decay of every vote kind for one tally.
type Decays struct {
	BlockProducer Decay
	Council       Decay
	Benefactor    Decay
	Delegator     Decay
}

// NewDecays prepares every vote kind's decay at now.
func NewDecays(v params.VotingRules, now inter.Timestamp) Decays {
	return Decays{
		BlockProducer: NewDecay(v.BlockProducerDecay, now),
		Council:       NewDecay(v.CouncilDecay, now),
		Benefactor:    NewDecay(v.BenefactorDecay, now),
		Delegator:     NewDecay(v.DelegatorDecay, now),
	}
}
