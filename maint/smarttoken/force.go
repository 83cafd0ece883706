package smarttoken

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

// dueSettlements returns the ids of requests on asset due at now, in id order.
func dueSettlements(st *ledger.State, asset inter.AssetID, now inter.Timestamp) []inter.SettlementID {
	var ids []inter.SettlementID
	for _, s := range st.ForceSettlements {
		if s.Balance.Asset == asset && s.SettlementDate <= now {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func findSettlement(st *ledger.State, id inter.SettlementID) *ledger.ForceSettlement {
	for i := range st.ForceSettlements {
		if st.ForceSettlements[i].ID == id {
			return &st.ForceSettlements[i]
		}
	}
	return nil
}

// forceSettle executes due settlement requests in FIFO order until the
// interval volume cap of the asset is reached. What is not executed stays
// queued.
func (e *Engine) forceSettle(id inter.AssetID) error {
	st := e.state
	due := dueSettlements(st, id, e.now)
	if len(due) == 0 {
		return nil
	}
	a := st.Asset(id)
	data := a.SmartToken
	log := e.log.WithField("asset", id)
	if data.Options.DisableForceSettle {
		log.WithField("requests", len(due)).Warn("Force settlement disabled, requests skipped")
		return nil
	}
	defaulted := data.HasSettlement()
	if !defaulted && data.CurrentFeed.SettlementPrice.IsNull() {
		log.WithField("requests", len(due)).Warn("No price feed, force settlement skipped")
		return nil
	}

	maxVolume, err := data.MaxForceSettlementVolume(a.Dynamic.CurrentSupply + data.ForceSettledVolume)
	if err != nil {
		return err
	}

	for _, sid := range due {
		room := maxVolume - data.ForceSettledVolume
		if room <= 0 {
			log.WithField("volume", data.ForceSettledVolume).Debug("Force settlement volume exhausted")
			break
		}
		req := findSettlement(st, sid)
		amount := inter.MinShare(req.Balance.Amount, room)

		var filled inter.Share
		if defaulted {
			filled, err = e.settleFromFund(a, req, amount)
		} else {
			filled, err = e.settleAgainstCalls(a, req, amount)
		}
		if err != nil {
			return fmt.Errorf("settlement %d: %w", sid, err)
		}
		if req.Balance.Amount == 0 {
			if err := st.RemoveForceSettlement(sid); err != nil {
				return err
			}
		}
		if filled < amount {
			log.WithField("settlement", sid).Debug("No counterparty left for force settlement")
			break
		}
	}
	return nil
}

// settleFromFund pays a request out of the settlement fund of a globally
// settled asset. Settling the whole remaining supply takes the whole fund.
func (e *Engine) settleFromFund(a *ledger.Asset, req *ledger.ForceSettlement, amount inter.Share) (inter.Share, error) {
	data := a.SmartToken
	receive, err := data.SettlementPrice.Convert(a.ID.Amount(amount))
	if err != nil {
		return 0, err
	}
	if amount >= a.Dynamic.CurrentSupply || receive.Amount > data.SettlementFund {
		receive.Amount = data.SettlementFund
	}
	if err := e.state.AdjustBalance(req.Owner, receive); err != nil {
		return 0, err
	}
	data.SettlementFund -= receive.Amount
	e.consume(a, req, amount)
	return amount, nil
}

// settleAgainstCalls matches a request against the least collateralized
// debt positions of the asset at the feed price minus the settlement offset.
func (e *Engine) settleAgainstCalls(a *ledger.Asset, req *ledger.ForceSettlement, amount inter.Share) (inter.Share, error) {
	st := e.state
	data := a.SmartToken
	var filled inter.Share
	for filled < amount {
		call := leastCollateralized(st, a.ID)
		if call == nil {
			break
		}
		fill := inter.MinShare(amount-filled, call.Debt.Amount)
		receive, err := settlementValue(data.CurrentFeed.SettlementPrice, a.ID.Amount(fill), data.Options.ForceSettlementOffsetPercent)
		if err != nil {
			return filled, err
		}
		if receive.Asset != call.Collateral.Asset {
			return filled, fmt.Errorf("call order %d: %w", call.ID, ErrBackingAsset)
		}
		if receive.Amount > call.Collateral.Amount {
			receive.Amount = call.Collateral.Amount
		}

		call.Debt.Amount -= fill
		call.Collateral.Amount -= receive.Amount
		borrower, leftover, closed := call.Borrower, call.Collateral, call.Debt.Amount == 0
		callID := call.ID

		if err := st.AdjustBalance(req.Owner, receive); err != nil {
			return filled, err
		}
		if closed {
			if err := st.AdjustBalance(borrower, leftover); err != nil {
				return filled, err
			}
			if err := st.RemoveCallOrder(callID); err != nil {
				return filled, err
			}
		}
		e.consume(a, req, fill)
		filled += fill

		e.log.WithFields(logrus.Fields{
			"asset":      a.ID,
			"settlement": req.ID,
			"call":       callID,
			"paid":       fill,
			"received":   receive.Amount,
		}).Debug("Force settled")
	}
	return filled, nil
}

// consume burns amount of the settled asset out of the request.
func (e *Engine) consume(a *ledger.Asset, req *ledger.ForceSettlement, amount inter.Share) {
	req.Balance.Amount -= amount
	a.Dynamic.CurrentSupply -= amount
	a.SmartToken.ForceSettledVolume += amount
}

// leastCollateralized returns the open debt position of asset with the
// lowest collateral to debt ratio, lower id first on ties.
func leastCollateralized(st *ledger.State, asset inter.AssetID) *ledger.CallOrder {
	var best *ledger.CallOrder
	for i := range st.CallOrders {
		c := &st.CallOrders[i]
		if c.Debt.Asset != asset || c.Debt.Amount <= 0 {
			continue
		}
		if best == nil || wide.CmpRatio(
			c.Collateral.Amount.Uint64(), c.Debt.Amount.Uint64(),
			best.Collateral.Amount.Uint64(), best.Debt.Amount.Uint64()) < 0 {
			best = c
		}
	}
	return best
}

// settlementValue converts amount at price and deducts offset basis points,
// rounding the result down once.
func settlementValue(price inter.Price, amount inter.AssetAmount, offset uint16) (inter.AssetAmount, error) {
	if price.IsNull() {
		return inter.AssetAmount{}, inter.ErrNullPrice
	}
	var num, den inter.AssetAmount
	switch amount.Asset {
	case price.Base.Asset:
		num, den = price.Quote, price.Base
	case price.Quote.Asset:
		num, den = price.Base, price.Quote
	default:
		return inter.AssetAmount{}, inter.ErrAssetMismatch
	}
	if offset > params.Percent100 {
		offset = params.Percent100
	}
	v := wide.Mul(amount.Amount.Uint64(), num.Amount.Uint64())
	v.Mul(v, uint256.NewInt(uint64(params.Percent100-offset)))
	d := wide.Mul(den.Amount.Uint64(), params.Percent100)
	v.Div(v, d)
	out, err := wide.Uint64(v)
	if err != nil {
		return inter.AssetAmount{}, err
	}
	return num.Asset.Amount(inter.Share(out)), nil
}
