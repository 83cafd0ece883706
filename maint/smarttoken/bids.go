package smarttoken

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

// bidsFor returns the collateral bids on asset, best offer first: most
// additional collateral per covered debt, then lower id.
func bidsFor(st *ledger.State, asset inter.AssetID) []ledger.CollateralBid {
	var bids []ledger.CollateralBid
	for _, b := range st.CollateralBids {
		if b.DebtCovered.Asset == asset {
			bids = append(bids, b)
		}
	}
	sort.SliceStable(bids, func(i, j int) bool {
		c := wide.CmpRatio(
			bids[i].AdditionalCollateral.Amount.Uint64(), bids[i].DebtCovered.Amount.Uint64(),
			bids[j].AdditionalCollateral.Amount.Uint64(), bids[j].DebtCovered.Amount.Uint64())
		if c != 0 {
			return c > 0
		}
		return bids[i].ID < bids[j].ID
	})
	return bids
}

// processBids revives a globally settled asset when the best collateral bids
// take over its whole supply at a call price better than the current feed.
// Otherwise the settlement is left as it is.
func (e *Engine) processBids(id inter.AssetID) error {
	st := e.state
	a := st.Asset(id)
	data := a.SmartToken
	if data.PredictionMarket || data.CurrentFeed.SettlementPrice.IsNull() {
		return nil
	}
	feed := data.CurrentFeed
	supply := a.Dynamic.CurrentSupply
	bids := bidsFor(st, id)

	var covered inter.Share
	end := 0
	for ; end < len(bids) && covered < supply; end++ {
		bid := bids[end]
		debt := inter.MinShare(bid.DebtCovered.Amount, supply)
		fromFund, err := data.SettlementPrice.Convert(id.Amount(debt))
		if err != nil {
			return fmt.Errorf("bid %d: %w", bid.ID, err)
		}
		collateral := fromFund.Amount + bid.AdditionalCollateral.Amount
		if !callPriceAboveFeed(debt, collateral, feed) {
			break
		}
		covered += debt
	}
	if covered < supply {
		e.log.WithFields(logrus.Fields{"asset": id, "covered": covered, "supply": supply}).Debug("Collateral bids do not cover supply")
		return nil
	}

	toCover := supply
	fund := data.SettlementFund
	for _, bid := range bids[:end] {
		debt := inter.MinShare(bid.DebtCovered.Amount, supply)
		fromFund, err := data.SettlementPrice.Convert(id.Amount(debt))
		if err != nil {
			return fmt.Errorf("bid %d: %w", bid.ID, err)
		}
		collateral := fromFund.Amount
		if debt >= toCover {
			debt = toCover
			collateral = fund
		}
		toCover -= debt
		fund -= collateral

		st.AddCallOrder(ledger.CallOrder{
			Borrower:   bid.Bidder,
			Debt:       id.Amount(debt),
			Collateral: bid.AdditionalCollateral.Asset.Amount(collateral + bid.AdditionalCollateral.Amount),
		})
		if err := st.RemoveCollateralBid(bid.ID); err != nil {
			return err
		}
		e.log.WithFields(logrus.Fields{"asset": id, "bid": bid.ID, "debt": debt, "collateral": collateral}).Debug("Collateral bid executed")
	}
	if fund != 0 || toCover != 0 {
		return fmt.Errorf("%w: fund %d, uncovered %d", ErrBidImbalance, fund, toCover)
	}

	// Revived: the losing bids get their collateral back.
	for _, bid := range bids[end:] {
		if err := st.AdjustBalance(bid.Bidder, bid.AdditionalCollateral); err != nil {
			return err
		}
		if err := st.RemoveCollateralBid(bid.ID); err != nil {
			return err
		}
	}
	a = st.Asset(id)
	a.SmartToken.SettlementPrice = inter.Price{}
	a.SmartToken.SettlementFund = 0

	e.log.WithFields(logrus.Fields{"asset": id, "bids": end}).Info("Globally settled asset revived")
	return nil
}

// callPriceAboveFeed reports whether a position of debt backed by collateral
// stays above the maintenance collateral ratio at the feed price, that is
// debt*mcr/(collateral*denom) < base/quote of the settlement price.
func callPriceAboveFeed(debt, collateral inter.Share, feed ledger.PriceFeed) bool {
	lhs := wide.Mul(debt.Uint64(), uint64(feed.MaintenanceCollateralRatio))
	lhs.Mul(lhs, uint256.NewInt(feed.SettlementPrice.Quote.Amount.Uint64()))
	rhs := wide.Mul(feed.SettlementPrice.Base.Amount.Uint64(), params.CollateralRatioDenom)
	rhs.Mul(rhs, uint256.NewInt(collateral.Uint64()))
	return lhs.Lt(rhs)
}
