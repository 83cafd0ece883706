package maint

import (
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/maint/smarttoken"
	"github.com/rony4d/go-dxp-maint/params"
)

// runUpgrades executes the one-time routines of every upgrade activated
// between the previous and the new maintenance time.
func (e *Engine) runUpgrades(st *ledger.State, now, from, to inter.Timestamp, rs params.Ruleset, log logrus.FieldLogger) error {
	forks := e.rules.Forks
	if forks.Crossed(params.FeedAssetCleanup, from, to) {
		log.Info("Cleaning up feeds with wrong backing asset")
		smarttoken.CleanupFeedAssets(st, now, rs, log)
	}
	if forks.Crossed(params.LifetimeMembership, from, to) {
		UpgradeAnnualMembers(st, now, log)
	}
	if forks.Crossed(params.MaxSupplyFix, from, to) {
		FixMaxSupply(st, log)
	}
	if forks.Crossed(params.NegativeBalanceFix, from, to) {
		FixNegativeBalances(st, log)
	}
	if forks.Crossed(params.LiquidStakeExclusion, from, to) {
		ResetLiquidTickets(st)
	}
	if forks.Crossed(params.CollateralizationCache, from, to) {
		log.Info("Matching call orders of all smarttokens")
		for i := range st.Assets {
			a := &st.Assets[i]
			if !a.IsMarketIssued() {
				continue
			}
			smarttoken.UpdateMedian(a, now, rs)
			if err := e.market.CheckCallOrders(st, a.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// FixMaxSupply raises the max supply of market-issued assets whose supply
// outgrew it.
func FixMaxSupply(st *ledger.State, log logrus.FieldLogger) {
	for i := range st.Assets {
		a := &st.Assets[i]
		if !a.IsMarketIssued() || a.MaxSupply == inter.MaxShareSupply {
			continue
		}
		if a.Dynamic.CurrentSupply > a.MaxSupply {
			log.WithFields(logrus.Fields{
				"asset":  a.Symbol,
				"supply": a.Dynamic.CurrentSupply,
				"old":    a.MaxSupply,
			}).Warn("Adjusting max supply")
			a.MaxSupply = inter.MinShare(a.Dynamic.CurrentSupply, inter.MaxShareSupply)
		}
	}
}

// ResetLiquidTickets zeroes the voting value of liquid tickets.
func ResetLiquidTickets(st *ledger.State) {
	for i := range st.Tickets {
		t := &st.Tickets[i]
		if !t.Liquid {
			continue
		}
		if acc := st.Account(t.Owner); acc != nil {
			acc.Stats.TotalPOLValue -= t.Value
		}
		t.Value = 0
	}
}

// UpgradeAnnualMembers turns every membership still valid at now into a
// lifetime membership.
func UpgradeAnnualMembers(st *ledger.State, now inter.Timestamp, log logrus.FieldLogger) {
	upgraded := 0
	for i := range st.Accounts {
		acc := &st.Accounts[i]
		if acc.IsMember(now) && acc.MembershipExpiration != inter.MaxTimestamp {
			acc.MembershipExpiration = inter.MaxTimestamp
			upgraded++
		}
	}
	log.WithField("accounts", upgraded).Info("Annual members upgraded to lifetime")
}

// FixNegativeBalances drops balances that went below zero and adds the
// missing amount back to the current supply of their asset.
func FixNegativeBalances(st *ledger.State, log logrus.FieldLogger) {
	kept := st.Balances[:0]
	for _, b := range st.Balances {
		if b.Amount >= 0 {
			kept = append(kept, b)
			continue
		}
		log.WithFields(logrus.Fields{
			"account": b.Owner,
			"asset":   b.Asset,
			"amount":  b.Amount,
		}).Warn("Removing negative balance")
		if a := st.Asset(b.Asset); a != nil {
			a.Dynamic.CurrentSupply -= b.Amount
		}
		if b.Asset == inter.CoreAsset {
			if acc := st.Account(b.Owner); acc != nil {
				acc.Stats.CoreInBalance -= b.Amount
			}
		}
	}
	st.Balances = kept
}
