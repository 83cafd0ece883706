// Package maint sequences the maintenance pass: fee routing, vote tally,
// elections, producer schedule, one-time upgrade routines, budget and
// smarttoken settlement, and schedules the next maintenance.
package maint

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/maint/budget"
	"github.com/rony4d/go-dxp-maint/maint/election"
	"github.com/rony4d/go-dxp-maint/maint/schedule"
	"github.com/rony4d/go-dxp-maint/maint/smarttoken"
	"github.com/rony4d/go-dxp-maint/maint/tally"
	"github.com/rony4d/go-dxp-maint/params"
)

// ErrInvariant marks a failed pass. The block that triggered it must not be
// applied.
var ErrInvariant = errors.New("maintenance invariant violated")

// Config holds node-local options. They do not affect consensus state.
type Config struct {
	// TrackStandbyVotes records vote totals of candidates that were not
	// elected too.
	TrackStandbyVotes bool
}

// DefaultConfig returns the default node options.
func DefaultConfig() Config {
	return Config{}
}

// Engine runs maintenance passes under fixed governance parameters.
type Engine struct {
	rules  params.Rules
	cfg    Config
	market Market
	log    logrus.FieldLogger
}

// New creates an engine. A nil market matches nothing.
func New(rules params.Rules, cfg Config, market Market, log logrus.FieldLogger) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if market == nil {
		market = NoopMarket{}
	}
	return &Engine{
		rules:  rules,
		cfg:    cfg,
		market: market,
		log:    log,
	}, nil
}

// Rules returns the governance parameters of the engine.
func (e *Engine) Rules() params.Rules {
	return e.rules
}

// Apply runs maintenance on a copy of st and returns the copy. st itself is
// never modified, so a failed pass leaves nothing behind.
func (e *Engine) Apply(st *ledger.State, block inter.Block) (*ledger.State, inter.Timestamp, error) {
	out := st.Copy()
	next, err := e.Run(out, block)
	if err != nil {
		return nil, 0, err
	}
	return out, next, nil
}

// Run performs the maintenance pass for block on st in place and returns the
// next maintenance time. On error st is left partially updated and must be
// discarded.
func (e *Engine) Run(st *ledger.State, block inter.Block) (inter.Timestamp, error) {
	now := block.Time
	rs := e.rules.Forks.Resolve(now)
	log := e.log.WithFields(logrus.Fields{
		"module": "maint",
		"block":  block.Number,
		"time":   now,
	})
	log.WithField("upgrades", rs.Names()).Info("Maintenance started")

	fail := func(stage string, err error) (inter.Timestamp, error) {
		log.WithError(err).WithField("stage", stage).Error("Maintenance failed")
		return 0, fmt.Errorf("%w: %s: %w", ErrInvariant, stage, err)
	}

	if err := DistributeFBA(st, e.rules.Economy, log); err != nil {
		return fail("fba", err)
	}
	CreateBuybackOrders(st, e.market, log)

	buf, err := tally.New(st, now, e.rules, rs, e.log).Run()
	if err != nil {
		return fail("tally", err)
	}

	elect := election.New(st, buf, e.rules, rs, e.cfg.TrackStandbyVotes, e.log)
	if err := elect.BlockProducers(); err != nil {
		return fail("block producer election", err)
	}
	if err := elect.Council(); err != nil {
		return fail("council election", err)
	}
	elect.Benefactors()

	schedule.Update(st, block, e.log)

	prev := st.Dynamic.NextMaintenanceTime
	next, skipped := NextMaintenanceTime(block, prev, e.rules.Maintenance.Interval)
	st.Dynamic.NextMaintenanceTime = next
	st.Dynamic.MaintenanceSkips = skipped
	if skipped > 0 {
		log.WithField("skipped", skipped).Warn("Maintenance intervals skipped")
	}

	if err := e.runUpgrades(st, now, prev, next, rs, log); err != nil {
		return fail("upgrades", err)
	}

	if _, err := budget.New(st, e.rules, now, e.log).Run(); err != nil {
		return fail("budget", err)
	}

	if err := smarttoken.New(st, now, rs, e.market, e.log).Run(); err != nil {
		return fail("smarttoken", err)
	}

	st.Dynamic.LastVoteTallyTime = now
	st.Dynamic.AccountsRegisteredThisInterval = 0

	log.WithField("next", next).Info("Maintenance finished")
	return next, nil
}
