package maint

import (
	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
)

// Market is the order matching subsystem the maintenance pass hands work to.
type Market interface {
	// CheckCallOrders matches margin-called debt positions of asset.
	CheckCallOrders(st *ledger.State, asset inter.AssetID) error
	// PlaceBuybackOrder offers sell for any amount of buy on behalf of seller.
	PlaceBuybackOrder(st *ledger.State, seller inter.AccountID, sell inter.AssetAmount, buy inter.AssetID) error
}

// NoopMarket accepts every request and matches nothing.
type NoopMarket struct{}

func (NoopMarket) CheckCallOrders(*ledger.State, inter.AssetID) error { return nil }

func (NoopMarket) PlaceBuybackOrder(*ledger.State, inter.AccountID, inter.AssetAmount, inter.AssetID) error {
	return nil
}
