package election

import (
	"errors"
	"math"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/utils/wide"
)

var (
	ErrVoteOrder      = errors.New("votes must be added in non-increasing order")
	ErrWeightOverflow = errors.New("authority weight overflow")
)

// LegacyAuthority keeps the 16 most significant bits of the total vote and
// scales every weight by the same shift, with a minimum weight of one. An
// account owning several winners is weighted by its first one.
func LegacyAuthority(winners []Candidate) inter.Authority {
	var (
		total   uint64
		weights = make(map[inter.AccountID]uint64, len(winners))
		order   []inter.AccountID
	)
	for _, w := range winners {
		if _, ok := weights[w.Account]; !ok {
			weights[w.Account] = w.Votes
			order = append(order, w.Account)
		}
		total += w.Votes
	}
	drop := wide.Msb(total) - 15
	if drop < 0 {
		drop = 0
	}
	var auth inter.Authority
	for _, acc := range order {
		votes := weights[acc] >> uint(drop)
		if votes < 1 {
			votes = 1
		}
		auth.AddWeight(acc, uint16(votes))
	}
	auth.WeightThreshold = uint32(auth.TotalWeight()/2 + 1)
	return auth
}

// VoteCounter builds an authority from votes added largest first. The shift
// is derived from the first vote so that it maps to 16 significant bits, and
// every later vote is scaled by the same shift.
type VoteCounter struct {
	auth    inter.Authority
	last    uint64
	shift   int
	started bool
	total   uint64
}

// Add adds the votes of one winner owned by who.
func (vc *VoteCounter) Add(who inter.AccountID, votes uint64) error {
	if votes == 0 {
		return nil
	}
	if !vc.started {
		vc.started = true
		vc.last = math.MaxUint64
		vc.shift = wide.Msb(votes) - 15
		if vc.shift < 0 {
			vc.shift = 0
		}
	}
	if votes > vc.last {
		return ErrVoteOrder
	}
	vc.last = votes

	scaled := votes >> uint(vc.shift)
	if scaled < 1 {
		scaled = 1
	}
	if scaled > math.MaxUint16 {
		return ErrWeightOverflow
	}
	vc.total += scaled
	if vc.total > math.MaxUint32 {
		return ErrWeightOverflow
	}
	if uint64(vc.auth.Weight(who))+scaled > math.MaxUint16 {
		return ErrWeightOverflow
	}
	vc.auth.AddWeight(who, uint16(scaled))
	return nil
}

// Finish writes the authority with a majority threshold into out. Nothing is
// written when no votes were added.
func (vc *VoteCounter) Finish(out *inter.Authority) bool {
	if vc.total == 0 {
		return false
	}
	vc.auth.WeightThreshold = uint32(vc.total)>>1 + 1
	*out = vc.auth
	return true
}
