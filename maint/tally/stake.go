package tally

import (
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/params"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

// CountableStake returns the core stake acc votes with before decay.
//
// Liquid balance and cashback count only before the liquid-stake upgrade,
// core in open orders only while proof-of-backing is not active anywhere.
// Proof-of-lock value then always counts, and proof-of-backing interpolates
// between the backed and unbacked regimes.
func CountableStake(st *ledger.State, acc *ledger.Account, pobActivated bool, rs params.Ruleset) (uint64, error) {
	stats := &acc.Stats
	var (
		stake uint64
		err   error
	)
	if !pobActivated {
		stake = stats.TotalCoreInOrders.Uint64()
	}
	if !rs.LiquidStakeExclusion() {
		if acc.CashbackVesting != nil {
			if vb := st.VestingBalance(*acc.CashbackVesting); vb != nil {
				if stake, err = checkedAdd(stake, vb.Balance.Amount.Uint64()); err != nil {
					return 0, err
				}
			}
		}
		if stake, err = checkedAdd(stake, stats.CoreInBalance.Uint64()); err != nil {
			return 0, err
		}
	}

	polAmount := stats.TotalCorePOL.Uint64()
	polValue := stats.TotalPOLValue.Uint64()
	pobAmount := stats.TotalCorePOB.Uint64()
	pobValue := stats.TotalPOBValue.Uint64()

	return backedStake(stake, polAmount, polValue, pobAmount, pobValue)
}

func backedStake(stake, polAmount, polValue, pobAmount, pobValue uint64) (uint64, error) {
	switch {
	case pobAmount == 0:
		return checkedAdd(stake, polValue)

	case polAmount == 0:
		if pobAmount <= stake {
			gain, ok := wide.Sub64(pobValue, pobAmount)
			if !ok {
				return 0, wide.ErrOverflow
			}
			return checkedAdd(stake, gain)
		}
		return wide.MulDiv(stake, pobValue, pobAmount)

	case pobAmount <= polAmount:
		base, err := wide.MulDiv(pobValue, polValue, polAmount)
		if err != nil {
			return 0, err
		}
		diff, err := wide.MulDiv(pobAmount, polValue, polAmount)
		if err != nil {
			return 0, err
		}
		// pobAmount <= polAmount, so diff <= polValue
		if base, err = checkedAdd(base, polValue-diff); err != nil {
			return 0, err
		}
		return checkedAdd(stake, base)

	default: // pobAmount > polAmount > 0
		base, err := wide.MulDiv(polValue, pobValue, pobAmount)
		if err != nil {
			return 0, err
		}
		diffAmount := pobAmount - polAmount
		if diffAmount <= stake {
			diffValue, err := wide.MulDiv(polAmount, pobValue, pobAmount)
			if err != nil {
				return 0, err
			}
			if base, err = checkedAdd(base, pobValue-diffValue); err != nil {
				return 0, err
			}
			net, ok := wide.Sub64(base, diffAmount)
			if !ok {
				return 0, wide.ErrOverflow
			}
			return checkedAdd(stake, net)
		}
		extra, err := wide.MulDiv(stake, pobValue, pobAmount)
		if err != nil {
			return 0, err
		}
		return checkedAdd(base, extra)
	}
}

func checkedAdd(a, b uint64) (uint64, error) {
	v, ok := wide.Add64(a, b)
	if !ok {
		return 0, wide.ErrOverflow
	}
	return v, nil
}
