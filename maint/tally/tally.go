// Package tally aggregates stake-weighted votes of all accounts into per-target
// totals and desired committee size histograms.
package tally

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

var ErrTallyOverflow = errors.New("vote tally overflow")

// Buffers is the scratch state of one tally. It lives for one maintenance
// pass and is discarded afterwards.
type Buffers struct {
	// Votes is indexed by vote instance.
	Votes []uint64

	// Histograms bucket the requested committee size n at n/2.
	BlockProducerHistogram []uint64
	CouncilHistogram       []uint64

	// Total stake that expressed a committee size opinion, per kind.
	BlockProducerStake uint64
	CouncilStake       uint64
}

// NewBuffers allocates buffers for vote instances below nextVoteID.
func NewBuffers(nextVoteID uint32, v params.VotingRules) *Buffers {
	return &Buffers{
		Votes:                  make([]uint64, nextVoteID),
		BlockProducerHistogram: make([]uint64, v.MaxBlockProducerCount/2+1),
		CouncilHistogram:       make([]uint64, v.MaxCouncilCount/2+1),
	}
}

// VotesFor returns the tally of id, or zero for an unallocated id.
func (b *Buffers) VotesFor(id inter.VoteID) uint64 {
	if i := id.Instance(); int(i) < len(b.Votes) {
		return b.Votes[i]
	}
	return 0
}

// Tally walks every account holding voting stake.
type Tally struct {
	state *ledger.State
	rules params.Rules
	rs    params.Ruleset
	now   inter.Timestamp
	log   logrus.FieldLogger

	decays       Decays
	pobActivated bool
	buf          *Buffers
}

// New prepares a tally of st at now.
func New(st *ledger.State, now inter.Timestamp, rules params.Rules, rs params.Ruleset, log logrus.FieldLogger) *Tally {
	return &Tally{
		state:        st,
		rules:        rules,
		rs:           rs,
		now:          now,
		log:          log.WithField("module", "tally"),
		decays:       NewDecays(rules.Voting, now),
		pobActivated: st.Dynamic.TotalPOB > 0 || st.Dynamic.TotalInactive > 0,
		buf:          NewBuffers(st.Global.NextAvailableVoteID, rules.Voting),
	}
}

// Run tallies all accounts and returns the filled buffers. Voting power
// snapshots of opinion accounts are written as a side effect.
func (t *Tally) Run() (*Buffers, error) {
	for i := range t.state.Accounts {
		if err := t.account(&t.state.Accounts[i]); err != nil {
			return nil, fmt.Errorf("account %d: %w", t.state.Accounts[i].ID, err)
		}
	}
	return t.buf, nil
}

func (t *Tally) account(stakeAcc *ledger.Account) error {
	if !stakeAcc.Stats.HasSomeCoreVoting() {
		return nil
	}
	if !t.rules.Voting.CountNonMemberVotes && !stakeAcc.IsMember(t.now) {
		return nil
	}
	// Once proof-of-backing is live only backing or inactive stake votes.
	if t.pobActivated && stakeAcc.Stats.TotalCorePOB == 0 && stakeAcc.Stats.TotalCoreInactive == 0 {
		return nil
	}
	opinionID := stakeAcc.OpinionAccount()
	direct := stakeAcc.Options.VotingAccount == inter.ProxyToSelfAccount
	opinion := stakeAcc
	if !direct {
		opinion = t.state.Account(opinionID)
		if opinion == nil {
			t.log.WithFields(logrus.Fields{
				"account": stakeAcc.ID,
				"proxy":   stakeAcc.Options.VotingAccount,
			}).Warn("Voting account not found, skipping")
			return nil
		}
	}

	total, err := CountableStake(t.state, stakeAcc, t.pobActivated, t.rs)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	var (
		stake        [inter.VoteKindCount]uint64
		councilStake uint64
		vp           ledger.VotingPower
	)
	if !t.rs.VoteDecay() {
		stake[inter.VoteCouncil] = total
		stake[inter.VoteBlockProducer] = total
		stake[inter.VoteBenefactor] = total
		councilStake = total
		vp = ledger.VotingPower{All: total, Active: total, Council: total, BlockProducer: total, Benefactor: total}
	} else {
		vp.All = total
		if !direct {
			total = t.decays.Delegator.Apply(total, stakeAcc.Stats.LastVoteTime)
		}
		vp.Active = total
		last := opinion.Stats.LastVoteTime
		stake[inter.VoteBlockProducer] = t.decays.BlockProducer.Apply(total, last)
		stake[inter.VoteCouncil] = t.decays.Council.Apply(total, last)
		councilStake = stake[inter.VoteCouncil]
		if opinion.NumCouncilVoted > 1 {
			stake[inter.VoteCouncil] /= uint64(opinion.NumCouncilVoted)
		}
		stake[inter.VoteBenefactor] = t.decays.Benefactor.Apply(total, last)
		vp.BlockProducer = stake[inter.VoteBlockProducer]
		vp.Council = councilStake
		vp.Benefactor = stake[inter.VoteBenefactor]
	}

	t.recordVotingPower(&opinion.Stats, vp)

	for _, id := range opinion.Options.Votes {
		kind := id.Kind()
		if kind > inter.VoteBenefactor {
			kind = inter.VoteBenefactor
		}
		offset := id.Instance()
		if int(offset) >= len(t.buf.Votes) {
			t.log.WithFields(logrus.Fields{"account": opinion.ID, "vote": id}).Debug("Vote target out of range, ignored")
			continue
		}
		if err := add(&t.buf.Votes[offset], stake[kind]); err != nil {
			return err
		}
	}

	if stake[inter.VoteBlockProducer] > 0 && opinion.Options.NumBlockProducer <= t.rules.Voting.MaxBlockProducerCount {
		if err := add(&t.buf.BlockProducerHistogram[opinion.Options.NumBlockProducer/2], stake[inter.VoteBlockProducer]); err != nil {
			return err
		}
	}
	if councilStake > 0 && opinion.Options.NumCouncil <= t.rules.Voting.MaxCouncilCount {
		if err := add(&t.buf.CouncilHistogram[opinion.Options.NumCouncil/2], councilStake); err != nil {
			return err
		}
	}
	if err := add(&t.buf.CouncilStake, councilStake); err != nil {
		return err
	}
	return add(&t.buf.BlockProducerStake, stake[inter.VoteBlockProducer])
}

// recordVotingPower writes the snapshot on the first visit of this tally and
// accumulates on later visits through other proxied accounts.
func (t *Tally) recordVotingPower(stats *ledger.AccountStatistics, vp ledger.VotingPower) {
	if stats.VoteTallyTime != t.now {
		stats.VotingPower = vp
		stats.VoteTallyTime = t.now
		return
	}
	stats.VotingPower.All += vp.All
	stats.VotingPower.Active += vp.Active
	stats.VotingPower.Council += vp.Council
	stats.VotingPower.BlockProducer += vp.BlockProducer
	stats.VotingPower.Benefactor += vp.Benefactor
}

func add(acc *uint64, v uint64) error {
	sum, ok := wide.Add64(*acc, v)
	if !ok {
		return ErrTallyOverflow
	}
	*acc = sum
	return nil
}
