package ledger

import (
	"crypto/sha256"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-dxp-maint/inter"
)

// IntervalRecord is the externally queryable outcome of one maintenance pass.
type IntervalRecord struct {
	MaintenanceTime     inter.Timestamp
	NextMaintenanceTime inter.Timestamp

	Budget BudgetRecord

	ActiveBlockProducers []inter.BlockProducerID
	ActiveCouncil        []inter.CouncilMemberID

	StateHash hash.Hash
}

// NewIntervalRecord captures the record of a pass that ended in s.
func NewIntervalRecord(s *State, at inter.Timestamp) IntervalRecord {
	rec := IntervalRecord{
		MaintenanceTime:      at,
		NextMaintenanceTime:  s.Dynamic.NextMaintenanceTime,
		ActiveBlockProducers: append([]inter.BlockProducerID(nil), s.Global.ActiveBlockProducers...),
		ActiveCouncil:        append([]inter.CouncilMemberID(nil), s.Global.ActiveCouncil...),
		StateHash:            s.Hash(),
	}
	if n := len(s.BudgetRecords); n > 0 {
		rec.Budget = s.BudgetRecords[n-1]
	}
	return rec
}

// Hash fingerprints the record.
func (r IntervalRecord) Hash() hash.Hash {
	hasher := sha256.New()
	if err := rlp.Encode(hasher, &r); err != nil {
		panic("can't hash: " + err.Error())
	}
	return hash.Of(hasher.Sum(nil), r.StateHash.Bytes())
}
