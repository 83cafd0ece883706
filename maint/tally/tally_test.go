package tally

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
	day = 86400
	now = inter.Timestamp(2000000000)
)

func TestDecayBoundaries(t *testing.T) {
	rules := params.DefaultDecayRules()
	d := NewDecay(rules, now)
	fullPowerTime := now - 360*day
	zeroPowerTime := fullPowerTime - 7*45*day

	tests := []struct {
		name     string
		lastVote inter.Timestamp
		want     uint64
	}{
		{"voted now", now, 8000},
		{"inside full power", fullPowerTime + 1, 8000},
		{"first step", fullPowerTime, 7000},
		{"end of first step", fullPowerTime - 45*day + 1, 7000},
		{"second step", fullPowerTime - 45*day, 6000},
		{"last step", zeroPowerTime + 1, 1000},
		{"zero power", zeroPowerTime, 0},
		{"never voted", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Apply(8000, tt.lastVote))
		})
	}
}

func TestDecayIsStaircase(t *testing.T) {
	d := NewDecay(params.DefaultDecayRules(), now)
	prev := d.Apply(1000000, now)
	steps := 0
	for last := now; last > now-700*day; last -= day {
		got := d.Apply(1000000, last)
		require.LessOrEqual(t, got, prev)
		if got < prev {
			steps++
		}
		prev = got
	}
	assert.Equal(t, 8, steps)
	assert.Equal(t, uint64(0), prev)
}

func TestBackedStake(t *testing.T) {
	tests := []struct {
		name                                  string
		stake, polAmt, polVal, pobAmt, pobVal uint64
		want                                  uint64
	}{
		{"no backing", 100, 0, 0, 0, 0, 100},
		{"lock only", 100, 50, 80, 0, 0, 180},
		{"backing covered by liquid", 100, 0, 0, 40, 60, 120},
		{"backing above liquid", 10, 0, 0, 40, 60, 15},
		{"backing below lock", 0, 100, 200, 50, 100, 300},
		{"backing above lock, covered", 100, 50, 100, 100, 200, 350},
		{"backing above lock, uncovered", 10, 50, 100, 100, 200, 220},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := backedStake(tt.stake, tt.polAmt, tt.polVal, tt.pobAmt, tt.pobVal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestState() *ledger.State {
	return &ledger.State{
		Global: ledger.GlobalProperties{NextAvailableVoteID: 4},
		Accounts: []ledger.Account{
			{
				ID:                   10,
				MembershipExpiration: inter.MaxTimestamp,
				Options: ledger.AccountOptions{
					VotingAccount:    inter.ProxyToSelfAccount,
					Votes:            []inter.VoteID{inter.NewVoteID(inter.VoteCouncil, 0), inter.NewVoteID(inter.VoteCouncil, 1), inter.NewVoteID(inter.VoteBlockProducer, 2), inter.NewVoteID(inter.VoteBenefactor, 9)},
					NumBlockProducer: 3,
					NumCouncil:       5,
				},
				NumCouncilVoted: 2,
				Stats:           ledger.AccountStatistics{CoreInBalance: 100, LastVoteTime: now},
			},
			{
				ID:      11,
				Options: ledger.AccountOptions{VotingAccount: 10},
				Stats:   ledger.AccountStatistics{CoreInBalance: 50, LastVoteTime: now - 400*day},
			},
			{
				ID:      12,
				Options: ledger.AccountOptions{VotingAccount: inter.ProxyToSelfAccount},
			},
		},
	}
}

func TestTallyLegacy(t *testing.T) {
	st := newTestState()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	rules := params.FakeNetRules()
	buf, err := New(st, now, rules, params.NewRuleset(), logger).Run()
	require.NoError(t, err)

	assert.Equal(t, []uint64{150, 150, 150, 0}, buf.Votes)
	assert.Equal(t, uint64(150), buf.BlockProducerHistogram[1])
	assert.Equal(t, uint64(150), buf.CouncilHistogram[2])
	assert.Equal(t, uint64(150), buf.BlockProducerStake)
	assert.Equal(t, uint64(150), buf.CouncilStake)

	vp := st.Account(10).Stats.VotingPower
	assert.Equal(t, ledger.VotingPower{All: 150, Active: 150, Council: 150, BlockProducer: 150, Benefactor: 150}, vp)
	assert.Equal(t, now, st.Account(10).Stats.VoteTallyTime)

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "Vote target out of range, ignored", hook.LastEntry().Message)
}

func TestTallyWithDecay(t *testing.T) {
	st := newTestState()
	logger, _ := test.NewNullLogger()

	rules := params.FakeNetRules()
	buf, err := New(st, now, rules, params.NewRuleset(params.VoteDecay), logger).Run()
	require.NoError(t, err)

	// account 11 delegates, and its own vote is 40 days into the first step
	// of delegator decay: 50 - 50*1250/10000 = 44 (truncated subtraction)
	delegated := uint64(50 - 50*1250/10000)
	assert.Equal(t, 100/2+delegated/2, buf.Votes[0])
	assert.Equal(t, 100+delegated, buf.Votes[2])
	assert.Equal(t, 100+delegated, buf.CouncilStake)
	assert.Equal(t, 100+delegated, buf.CouncilHistogram[2])

	vp := st.Account(10).Stats.VotingPower
	assert.Equal(t, uint64(150), vp.All)
	assert.Equal(t, 100+delegated, vp.Active)
}

func TestTallySkipsNonMembers(t *testing.T) {
	st := newTestState()
	logger, _ := test.NewNullLogger()
	rules := params.FakeNetRules()
	rules.Voting.CountNonMemberVotes = false

	buf, err := New(st, now, rules, params.NewRuleset(), logger).Run()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), buf.Votes[2])
}

func TestTallyMissingProxy(t *testing.T) {
	st := newTestState()
	st.Accounts[1].Options.VotingAccount = 99
	logger, hook := test.NewNullLogger()

	buf, err := New(st, now, params.FakeNetRules(), params.NewRuleset(), logger).Run()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), buf.Votes[2])
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestTallyLiquidExclusion(t *testing.T) {
	st := newTestState()
	st.Accounts[0].Stats.TotalCorePOL = 10
	st.Accounts[0].Stats.TotalPOLValue = 30
	logger, _ := test.NewNullLogger()

	buf, err := New(st, now, params.FakeNetRules(), params.NewRuleset(params.LiquidStakeExclusion), logger).Run()
	require.NoError(t, err)
	assert.Equal(t, uint64(30), buf.Votes[2])
}

func TestTallyPOBActivation(t *testing.T) {
	st := newTestState()
	st.Dynamic.TotalPOB = 1
	st.Accounts[0].Stats.TotalCorePOL = 10
	st.Accounts[0].Stats.TotalPOLValue = 30
	st.Accounts = append(st.Accounts, ledger.Account{
		ID:                   13,
		MembershipExpiration: inter.MaxTimestamp,
		Options: ledger.AccountOptions{
			VotingAccount: inter.ProxyToSelfAccount,
			Votes:         []inter.VoteID{inter.NewVoteID(inter.VoteBlockProducer, 3)},
		},
		Stats: ledger.AccountStatistics{
			TotalCoreInOrders: 100,
			TotalCorePOL:      10,
			TotalPOLValue:     30,
			TotalCorePOB:      10,
			TotalPOBValue:     20,
			LastVoteTime:      now,
		},
	})
	logger, _ := test.NewNullLogger()

	buf, err := New(st, now, params.FakeNetRules(), params.NewRuleset(params.LiquidStakeExclusion), logger).Run()
	require.NoError(t, err)

	// account 10 and its delegator 11 hold no backing stake and are skipped
	assert.Equal(t, uint64(0), buf.Votes[2])
	assert.Equal(t, ledger.VotingPower{}, st.Account(10).Stats.VotingPower)
	// account 13 votes with backed stake only, its orders do not count
	assert.Equal(t, uint64(20*30/10+30-10*30/10), buf.Votes[3])
	assert.Equal(t, uint64(60), buf.BlockProducerStake)
}

func TestVotesFor(t *testing.T) {
	buf := NewBuffers(2, params.DefaultVotingRules())
	buf.Votes[1] = 7
	assert.Equal(t, uint64(7), buf.VotesFor(inter.NewVoteID(inter.VoteBlockProducer, 1)))
	assert.Equal(t, uint64(0), buf.VotesFor(inter.NewVoteID(inter.VoteBlockProducer, 5)))
	assert.Len(t, buf.BlockProducerHistogram, 501)
}
