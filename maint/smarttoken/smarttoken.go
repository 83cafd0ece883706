// Package smarttoken runs the per-interval upkeep of market-issued assets:
// feed expiry and medians, revival of globally settled assets through
// collateral bids, and capped force settlement.
package smarttoken

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
)

var (
	ErrBidImbalance = errors.New("collateral bids do not balance the settlement fund")
	ErrBackingAsset = errors.New("debt position in unexpected backing asset")
)

// CallChecker matches margin-called debt positions of an asset against the
// order book. It is invoked whenever the median feed of an asset changes.
type CallChecker interface {
	CheckCallOrders(st *ledger.State, asset inter.AssetID) error
}

// Engine processes all market-issued assets of one interval.
type Engine struct {
	state  *ledger.State
	now    inter.Timestamp
	rs     params.Ruleset
	market CallChecker
	log    logrus.FieldLogger
}

// New creates a settlement engine.
func New(st *ledger.State, now inter.Timestamp, rs params.Ruleset, market CallChecker, log logrus.FieldLogger) *Engine {
	return &Engine{
		state:  st,
		now:    now,
		rs:     rs,
		market: market,
		log:    log.WithField("module", "smarttoken"),
	}
}

// Run processes every market-issued asset in id order.
func (e *Engine) Run() error {
	for _, id := range marketAssets(e.state) {
		if err := e.process(id); err != nil {
			return fmt.Errorf("asset %d: %w", id, err)
		}
	}
	return nil
}

func (e *Engine) process(id inter.AssetID) error {
	a := e.state.Asset(id)
	a.SmartToken.ForceSettledVolume = 0
	if e.rs.FeedPruning() {
		e.pruneFeeds(a)
	}

	if a.SmartToken.HasSettlement() {
		if err := e.processBids(id); err != nil {
			return err
		}
	}

	if changed := e.updateMedian(e.state.Asset(id)); changed && e.market != nil {
		if err := e.market.CheckCallOrders(e.state, id); err != nil {
			return fmt.Errorf("check call orders: %w", err)
		}
	}

	return e.forceSettle(id)
}

// marketAssets lists the ids of market-issued assets. Ids are collected up
// front since processing may reorganize other collections.
func marketAssets(st *ledger.State) []inter.AssetID {
	var ids []inter.AssetID
	for i := range st.Assets {
		if st.Assets[i].IsMarketIssued() {
			ids = append(ids, st.Assets[i].ID)
		}
	}
	return ids
}
