package budget

import (
	"errors"
	"fmt"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
)

var ErrInvalidPayout = errors.New("benefactor payout must hold exactly one policy")

// ApplyPayout hands pay to the benefactor through its payout policy.
func ApplyPayout(st *ledger.State, b *ledger.Benefactor, pay inter.Share, now inter.Timestamp) error {
	p := &b.Payout
	set := 0
	for _, ok := range []bool{p.Refund != nil, p.Vesting != nil, p.Burn != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("benefactor %d: %w", b.ID, ErrInvalidPayout)
	}

	switch {
	case p.Refund != nil:
		core := st.CoreAsset()
		if core == nil {
			return fmt.Errorf("core asset: %w", ledger.ErrNotFound)
		}
		p.Refund.TotalBurned += pay
		core.Dynamic.CurrentSupply -= pay
	case p.Vesting != nil:
		vb := st.VestingBalance(p.Vesting.Balance)
		if vb == nil {
			return fmt.Errorf("benefactor %d vesting balance %d: %w", b.ID, p.Vesting.Balance, ledger.ErrNotFound)
		}
		vb.Deposit(now, pay)
	case p.Burn != nil:
		p.Burn.TotalBurned += pay
		return st.AdjustBalance(inter.NullAccount, inter.CoreAsset.Amount(pay))
	}
	return nil
}
