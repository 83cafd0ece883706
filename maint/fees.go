package maint

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

// DistributeFBA empties every fee-backed asset accumulator. The buyback and
// issuer shares go to the designated asset's buyback account and issuer, the
// rest leaves the supply. Accumulators without a designated asset with a
// buyback account give everything to the network.
func DistributeFBA(st *ledger.State, econ params.EconomyRules, log logrus.FieldLogger) error {
	core := st.CoreAsset()
	if core == nil {
		return fmt.Errorf("core asset: %w", ledger.ErrNotFound)
	}
	issuerPercent := params.Percent100 - uint64(econ.FBANetworkPercent) - uint64(econ.FBABuybackPercent)

	for i := range st.FBAAccumulators {
		fba := &st.FBAAccumulators[i]
		fees := fba.AccumulatedFees
		if fees == 0 {
			continue
		}
		var designated *ledger.Asset
		if fba.DesignatedAsset != nil {
			designated = st.Asset(*fba.DesignatedAsset)
		}
		if designated == nil || designated.BuybackAccount == nil {
			log.WithFields(logrus.Fields{"fba": fba.ID, "amount": fees}).Info("Fees given to network, accumulator not configured")
			core.Dynamic.CurrentSupply -= fees
			fba.AccumulatedFees = 0
			continue
		}

		buyback, err := wide.MulDiv(fees.Uint64(), uint64(econ.FBABuybackPercent), params.Percent100)
		if err != nil {
			return err
		}
		issuer, err := wide.MulDiv(fees.Uint64(), issuerPercent, params.Percent100)
		if err != nil {
			return err
		}
		network := fees - inter.Share(buyback+issuer)
		if network < 0 {
			return fmt.Errorf("fba %d: %w", fba.ID, wide.ErrOverflow)
		}

		core.Dynamic.CurrentSupply -= network
		if err := st.AdjustBalance(*designated.BuybackAccount, inter.CoreAsset.Amount(inter.Share(buyback))); err != nil {
			return err
		}
		if err := st.AdjustBalance(designated.Issuer, inter.CoreAsset.Amount(inter.Share(issuer))); err != nil {
			return err
		}
		fba.AccumulatedFees = 0

		log.WithFields(logrus.Fields{
			"fba":     fba.ID,
			"network": network,
			"buyback": buyback,
			"issuer":  issuer,
		}).Debug("Fee-backed asset fees distributed")
	}
	return nil
}

// CreateBuybackOrders makes every buyback account offer its whitelisted
// holdings for the asset it buys back. Failures are logged and skipped.
func CreateBuybackOrders(st *ledger.State, market Market, log logrus.FieldLogger) {
	for _, bb := range st.Buybacks {
		toBuy := st.Asset(bb.Asset)
		if toBuy == nil || toBuy.BuybackAccount == nil {
			log.WithField("asset", bb.Asset).Warn("Buyback asset without buyback account")
			continue
		}
		seller := *toBuy.BuybackAccount
		acc := st.Account(seller)
		if acc == nil || len(acc.AllowedAssets) == 0 {
			log.WithField("account", seller).Warn("Skipping buyback account without allowed assets")
			continue
		}

		for _, bal := range st.BalancesOf(seller) {
			if bal.Asset == bb.Asset || bal.Amount == 0 {
				continue
			}
			if !allowed(acc.AllowedAssets, bal.Asset) {
				log.WithFields(logrus.Fields{"account": seller, "asset": bal.Asset}).Warn("Buyback account not selling disallowed holdings")
				continue
			}
			sell := bal.Asset.Amount(bal.Amount)
			if err := market.PlaceBuybackOrder(st, seller, sell, bb.Asset); err != nil {
				log.WithFields(logrus.Fields{
					"account": seller,
					"sell":    sell,
					"buy":     bb.Asset,
				}).WithError(err).Warn("Skipping buyback order")
			}
		}
	}
}

func allowed(list []inter.AssetID, id inter.AssetID) bool {
	for _, a := range list {
		if a == id {
			return true
		}
	}
	return false
}
