// Package election turns vote tallies into the elected block producer set and
// council, and rebuilds the authorities those sets control.
package election

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/maint/tally"
	"github.com/rony4d/go-dxp-maint/params"
)

var ErrReservedAccount = errors.New("reserved account missing")

// Candidate is the election view of a block producer or council member.
type Candidate struct {
	ID      uint64
	Account inter.AccountID
	VoteID  inter.VoteID
	Votes   uint64
}

// TargetSize derives the elected set size from the desired size histogram.
// Buckets are walked upwards until more than half of the stake that did not
// abstain is covered; bucket i stands for a size of 2i+1.
func TargetSize(hist []uint64, totalStake uint64, min uint16) int {
	var abstain uint64
	if len(hist) > 0 {
		abstain = hist[0]
	}
	var target uint64
	if totalStake > abstain {
		target = (totalStake - abstain) / 2
	}
	count := 0
	if target > 0 {
		var tally uint64
		for count < len(hist)-1 && tally <= target {
			count++
			tally += hist[count]
		}
	}
	n := count*2 + 1
	if n < int(min) {
		n = int(min)
	}
	return n
}

// Rank returns the top n candidates by votes, ties broken by lower id. When
// fewer than n candidates exist the last ranked entry is repeated.
func Rank(cands []Candidate, n int) []Candidate {
	ranked := append([]Candidate(nil), cands...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Votes != ranked[j].Votes {
			return ranked[i].Votes > ranked[j].Votes
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	for len(ranked) > 0 && len(ranked) < n {
		ranked = append(ranked, ranked[len(ranked)-1])
	}
	return ranked
}

// Distinct drops repeated candidates, keeping rank order.
func Distinct(ranked []Candidate) []Candidate {
	seen := make(map[uint64]bool, len(ranked))
	out := make([]Candidate, 0, len(ranked))
	for _, c := range ranked {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}

// Elector runs both elections of one maintenance pass.
type Elector struct {
	state        *ledger.State
	buf          *tally.Buffers
	rules        params.Rules
	rs           params.Ruleset
	trackStandby bool
	log          logrus.FieldLogger
}

// New creates an elector over the tally results buf.
func New(st *ledger.State, buf *tally.Buffers, rules params.Rules, rs params.Ruleset, trackStandby bool, log logrus.FieldLogger) *Elector {
	return &Elector{
		state:        st,
		buf:          buf,
		rules:        rules,
		rs:           rs,
		trackStandby: trackStandby,
		log:          log.WithField("module", "election"),
	}
}

// BlockProducers elects the block producer set.
func (e *Elector) BlockProducers() error {
	st := e.state
	cands := make([]Candidate, len(st.BlockProducers))
	for i, bp := range st.BlockProducers {
		cands[i] = Candidate{ID: uint64(bp.ID), Account: bp.Account, VoteID: bp.VoteID, Votes: e.buf.VotesFor(bp.VoteID)}
	}
	n := TargetSize(e.buf.BlockProducerHistogram, e.buf.BlockProducerStake, e.rules.Immutable.MinBlockProducerCount)
	winners := Distinct(Rank(cands, n))

	elected := make(map[uint64]bool, len(winners))
	for _, w := range winners {
		elected[w.ID] = true
	}
	for i := range st.BlockProducers {
		bp := &st.BlockProducers[i]
		if e.trackStandby || elected[uint64(bp.ID)] {
			bp.TotalVotes = cands[i].Votes
		}
	}

	if len(winners) > 0 {
		acc := st.Account(inter.BlockProducerAccount)
		if acc == nil {
			return fmt.Errorf("block producer account: %w", ErrReservedAccount)
		}
		if err := e.updateAuthority(&acc.Active, winners); err != nil {
			return fmt.Errorf("block producer authority: %w", err)
		}
	}

	active := make([]inter.BlockProducerID, len(winners))
	for i, w := range winners {
		active[i] = inter.BlockProducerID(w.ID)
	}
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })
	st.Global.ActiveBlockProducers = active

	e.log.WithFields(logrus.Fields{"target": n, "elected": len(active)}).Info("Block producers elected")
	return nil
}

// Council elects the council. An empty candidate list leaves the council
// authorities untouched.
func (e *Elector) Council() error {
	st := e.state
	cands := make([]Candidate, len(st.CouncilMembers))
	for i, cm := range st.CouncilMembers {
		cands[i] = Candidate{ID: uint64(cm.ID), Account: cm.Account, VoteID: cm.VoteID, Votes: e.buf.VotesFor(cm.VoteID)}
	}
	n := TargetSize(e.buf.CouncilHistogram, e.buf.CouncilStake, e.rules.Immutable.MinCouncilCount)
	winners := Distinct(Rank(cands, n))

	elected := make(map[uint64]bool, len(winners))
	for _, w := range winners {
		elected[w.ID] = true
	}
	for i := range st.CouncilMembers {
		cm := &st.CouncilMembers[i]
		if e.trackStandby || elected[uint64(cm.ID)] {
			cm.TotalVotes = cands[i].Votes
		}
	}

	if len(winners) > 0 {
		council := st.Account(inter.CouncilAccount)
		relaxed := st.Account(inter.RelaxedCouncilAccount)
		if council == nil || relaxed == nil {
			return fmt.Errorf("council account: %w", ErrReservedAccount)
		}
		if err := e.updateAuthority(&council.Active, winners); err != nil {
			return fmt.Errorf("council authority: %w", err)
		}
		relaxed.Active = council.Active.Copy()
	}

	active := make([]inter.CouncilMemberID, len(winners))
	for i, w := range winners {
		active[i] = inter.CouncilMemberID(w.ID)
	}
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })
	st.Global.ActiveCouncil = active

	e.log.WithFields(logrus.Fields{"target": n, "elected": len(active)}).Info("Council elected")
	return nil
}

func (e *Elector) updateAuthority(auth *inter.Authority, winners []Candidate) error {
	if e.rs.VoteCounterAuthority() {
		var vc VoteCounter
		for _, w := range winners {
			if err := vc.Add(w.Account, w.Votes); err != nil {
				return err
			}
		}
		vc.Finish(auth)
		return nil
	}
	*auth = LegacyAuthority(winners)
	return nil
}

// Benefactors refreshes benefactor vote totals from the tally. Votes against
// are dropped once negative benefactor votes are disabled.
func (e *Elector) Benefactors() {
	for i := range e.state.Benefactors {
		b := &e.state.Benefactors[i]
		b.TotalVotesFor = e.buf.VotesFor(b.VoteFor)
		if e.rs.NegativeBenefactorVotes() {
			b.TotalVotesAgainst = e.buf.VotesFor(b.VoteAgainst)
		} else {
			b.TotalVotesAgainst = 0
		}
	}
}
