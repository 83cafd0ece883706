package inter

import "sort"

// AccountWeight is one weighted signer of an authority.
type AccountWeight struct {
	Account AccountID
	Weight  uint16
}

// Authority is a weighted multi-signature threshold. AccountAuths is kept
// sorted by account id.
type Authority struct {
	WeightThreshold uint32
	AccountAuths    []AccountWeight
}

// AddWeight adds w to the weight of account, inserting it if absent.
func (a *Authority) AddWeight(account AccountID, w uint16) {
	i := sort.Search(len(a.AccountAuths), func(i int) bool {
		return a.AccountAuths[i].Account >= account
	})
	if i < len(a.AccountAuths) && a.AccountAuths[i].Account == account {
		a.AccountAuths[i].Weight += w
		return
	}
	a.AccountAuths = append(a.AccountAuths, AccountWeight{})
	copy(a.AccountAuths[i+1:], a.AccountAuths[i:])
	a.AccountAuths[i] = AccountWeight{Account: account, Weight: w}
}

// Weight returns the weight of account, or zero.
func (a Authority) Weight(account AccountID) uint16 {
	for _, aw := range a.AccountAuths {
		if aw.Account == account {
			return aw.Weight
		}
	}
	return 0
}

// TotalWeight sums all signer weights.
func (a Authority) TotalWeight() uint64 {
	var total uint64
	for _, aw := range a.AccountAuths {
		total += uint64(aw.Weight)
	}
	return total
}

// Copy returns a deep copy.
func (a Authority) Copy() Authority {
	cp := a
	cp.AccountAuths = append([]AccountWeight(nil), a.AccountAuths...)
	return cp
}
