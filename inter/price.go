package inter

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/rony4d/go-dxp-maint/utils/wide"
)

var (
	ErrAssetMismatch  = errors.New("asset does not belong to price")
	ErrNullPrice      = errors.New("null price")
	ErrNegativeAmount = errors.New("negative amount")
)

// AssetAmount is an amount of one specific asset.
type AssetAmount struct {
	Amount Share
	Asset  AssetID
}

// Amount builds an AssetAmount of the given asset.
func (a AssetID) Amount(v Share) AssetAmount {
	return AssetAmount{Amount: v, Asset: a}
}

func (a AssetAmount) String() string {
	return fmt.Sprintf("%d@%d", a.Amount, a.Asset)
}

// Price is the exchange ratio Base/Quote between two assets. A price is kept
// as two integer amounts, never as a float, and is compared exactly.
type Price struct {
	Base  AssetAmount
	Quote AssetAmount
}

// IsNull reports whether the price carries no ratio.
func (p Price) IsNull() bool {
	return p.Base.Amount <= 0 || p.Quote.Amount <= 0
}

// Convert exchanges a into the other asset of the price, rounding down. The
// holder of a therefore never receives more than the exact ratio entitles.
func (p Price) Convert(a AssetAmount) (AssetAmount, error) {
	if p.IsNull() {
		return AssetAmount{}, ErrNullPrice
	}
	if a.Amount < 0 {
		return AssetAmount{}, ErrNegativeAmount
	}
	var num, den AssetAmount
	switch a.Asset {
	case p.Base.Asset:
		num, den = p.Quote, p.Base
	case p.Quote.Asset:
		num, den = p.Base, p.Quote
	default:
		return AssetAmount{}, fmt.Errorf("%w: %d not in %d/%d", ErrAssetMismatch, a.Asset, p.Base.Asset, p.Quote.Asset)
	}
	v, err := wide.MulDiv(uint64(a.Amount), uint64(num.Amount), uint64(den.Amount))
	if err != nil {
		return AssetAmount{}, err
	}
	if v > uint64(MaxShareSupply) {
		return AssetAmount{}, wide.ErrOverflow
	}
	return AssetAmount{Amount: Share(v), Asset: num.Asset}, nil
}

// Cmp orders prices by asset pair first and by ratio second, returning -1, 0
// or +1. Ratios are cross-multiplied in 256-bit precision.
func (p Price) Cmp(o Price) int {
	if p.Base.Asset != o.Base.Asset {
		if p.Base.Asset < o.Base.Asset {
			return -1
		}
		return 1
	}
	if p.Quote.Asset != o.Quote.Asset {
		if p.Quote.Asset < o.Quote.Asset {
			return -1
		}
		return 1
	}
	return wide.CmpRatio(p.Base.Amount.Uint64(), p.Quote.Amount.Uint64(), o.Base.Amount.Uint64(), o.Quote.Amount.Uint64())
}

// Less reports whether p sorts before o.
func (p Price) Less(o Price) bool {
	return p.Cmp(o) < 0
}

func (p Price) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// ScaleRatio returns a price equal to p * num/den. When the exact result does
// not fit the share range both sides are halved until it does, mirroring the
// precision loss accepted for derived collateralization prices.
func (p Price) ScaleRatio(num, den uint64) Price {
	if p.IsNull() || num == 0 || den == 0 {
		return Price{}
	}
	base := wide.Mul(uint64(p.Base.Amount), num)
	quote := wide.Mul(uint64(p.Quote.Amount), den)
	limit := uint256.NewInt(uint64(MaxShareSupply))
	one := uint256.NewInt(1)
	for base.Gt(limit) || quote.Gt(limit) {
		base.Rsh(base, 1).Add(base, one)
		quote.Rsh(quote, 1).Add(quote, one)
	}
	return Price{
		Base:  AssetAmount{Amount: Share(base.Uint64()), Asset: p.Base.Asset},
		Quote: AssetAmount{Amount: Share(quote.Uint64()), Asset: p.Quote.Asset},
	}
}
