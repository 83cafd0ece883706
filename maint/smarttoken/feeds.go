package smarttoken

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
)

// pruneFeeds drops feeds published before now - lifetime. Only assets fed by
// block producers or the council are pruned.
func (e *Engine) pruneFeeds(a *ledger.Asset) {
	st := a.SmartToken
	if !st.Options.FedByProducers && !st.Options.FedByCouncil {
		return
	}
	lifetime := st.Options.FeedLifetimeSec
	if inter.Timestamp(lifetime) >= e.now {
		return
	}
	oldest := e.now - inter.Timestamp(lifetime)
	kept := st.Feeds[:0]
	for _, f := range st.Feeds {
		if f.Published < oldest {
			e.log.WithFields(logrus.Fields{"asset": a.ID, "publisher": f.Publisher}).Debug("Expired feed pruned")
			continue
		}
		kept = append(kept, f)
	}
	st.Feeds = kept
}

// MedianFeed computes the median of the feeds active at now. Every field is
// taken at index n/2 of its own ordering, so the result may combine values
// of different publishers. Fewer than minFeeds active feeds give a null feed.
func MedianFeed(feeds []ledger.FeedEntry, now inter.Timestamp, lifetime uint32, minFeeds uint8) (ledger.PriceFeed, inter.Timestamp) {
	published := now
	var active []ledger.PriceFeed
	for _, f := range feeds {
		if f.Published.IsZero() || now.Sub(f.Published) >= lifetime {
			continue
		}
		active = append(active, f.Feed)
		if f.Published < published {
			published = f.Published
		}
	}
	if len(active) == 0 || len(active) < int(minFeeds) {
		return ledger.PriceFeed{}, now
	}
	if len(active) == 1 {
		return active[0], published
	}

	mid := len(active) / 2
	var median ledger.PriceFeed

	sort.SliceStable(active, func(i, j int) bool { return active[i].SettlementPrice.Less(active[j].SettlementPrice) })
	median.SettlementPrice = active[mid].SettlementPrice
	sort.SliceStable(active, func(i, j int) bool { return active[i].CoreExchangeRate.Less(active[j].CoreExchangeRate) })
	median.CoreExchangeRate = active[mid].CoreExchangeRate
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MaintenanceCollateralRatio < active[j].MaintenanceCollateralRatio
	})
	median.MaintenanceCollateralRatio = active[mid].MaintenanceCollateralRatio
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MaximumShortSqueezeRatio < active[j].MaximumShortSqueezeRatio
	})
	median.MaximumShortSqueezeRatio = active[mid].MaximumShortSqueezeRatio
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].InitialCollateralRatio < active[j].InitialCollateralRatio
	})
	median.InitialCollateralRatio = active[mid].InitialCollateralRatio

	return median, published
}

// updateMedian refreshes the current feed of a and reports whether it changed.
func (e *Engine) updateMedian(a *ledger.Asset) bool {
	return UpdateMedian(a, e.now, e.rs)
}

// UpdateMedian recomputes the current feed of a market-issued asset and,
// once collateralization prices are cached, its derived call prices.
func UpdateMedian(a *ledger.Asset, now inter.Timestamp, rs params.Ruleset) bool {
	st := a.SmartToken
	old := st.CurrentFeed
	st.CurrentFeed, st.CurrentFeedPublicationTime = MedianFeed(st.Feeds, now, st.Options.FeedLifetimeSec, st.Options.MinimumFeeds)
	if rs.CollateralizationCache() {
		feed := st.CurrentFeed
		st.CurrentMaintenanceCollateralization = feed.SettlementPrice.ScaleRatio(params.CollateralRatioDenom, uint64(feed.MaintenanceCollateralRatio))
		st.CurrentInitialCollateralization = feed.SettlementPrice.ScaleRatio(params.CollateralRatioDenom, uint64(feed.InitialCollateralRatio))
	}
	return old != st.CurrentFeed
}

// CleanupFeedAssets removes feeds whose settlement price is quoted in an
// asset other than the backing asset and recomputes every median. Feeds of
// assets not fed by producers or the council cannot be removed and are
// nulled instead.
func CleanupFeedAssets(st *ledger.State, now inter.Timestamp, rs params.Ruleset, log logrus.FieldLogger) {
	for _, id := range marketAssets(st) {
		a := st.Asset(id)
		data := a.SmartToken
		fed := data.Options.FedByProducers || data.Options.FedByCouncil
		kept := data.Feeds[:0]
		for _, f := range data.Feeds {
			price := f.Feed.SettlementPrice
			if price.Quote.Asset != data.Options.ShortBackingAsset && (fed || price != (inter.Price{})) {
				log.WithFields(logrus.Fields{"asset": id, "publisher": f.Publisher}).Warn("Feed with wrong backing asset")
				if fed {
					continue
				}
				f.Feed.SettlementPrice = inter.Price{}
			}
			kept = append(kept, f)
		}
		data.Feeds = kept
		UpdateMedian(a, now, rs)
	}
}
