// Package schedule orders the elected block producers into the round-robin
// production schedule.
package schedule

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
)

// multiplier of the xorshift* generator.
const multiplier uint64 = 2685821657736338717

var ErrEmptySchedule = errors.New("no block producers scheduled")

// Shuffle returns a permutation of active seeded by now. It is a
// Fisher-Yates shuffle driven by xorshift*; active is not modified.
func Shuffle(active []inter.BlockProducerID, now inter.Timestamp) []inter.BlockProducerID {
	out := append([]inter.BlockProducerID(nil), active...)
	n := uint64(len(out))
	nowHi := uint64(now) << 32
	for i := uint64(0); i < n; i++ {
		k := nowHi + i*multiplier
		k ^= k >> 12
		k ^= k << 25
		k ^= k >> 27
		k *= multiplier

		j := i + k%(n-i)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Update reshuffles the schedule when block completes a full round of the
// elected set. It reports whether a new schedule was written.
func Update(st *ledger.State, block inter.Block, log logrus.FieldLogger) bool {
	n := len(st.Global.ActiveBlockProducers)
	if n == 0 {
		log.WithField("module", "schedule").Warn("No active block producers, schedule kept")
		return false
	}
	if uint64(block.Number)%uint64(n) != 0 {
		return false
	}
	st.Schedule.CurrentShuffled = Shuffle(st.Global.ActiveBlockProducers, block.Time)
	log.WithFields(logrus.Fields{
		"module": "schedule",
		"block":  block.Number,
		"size":   n,
	}).Debug("Producer schedule shuffled")
	return true
}

// ScheduledProducer returns the producer of the slot-th slot after the
// current absolute slot.
func ScheduledProducer(st *ledger.State, slot uint64) (inter.BlockProducerID, error) {
	shuffled := st.Schedule.CurrentShuffled
	if len(shuffled) == 0 {
		return 0, ErrEmptySchedule
	}
	aslot := st.Dynamic.CurrentAslot + slot
	return shuffled[aslot%uint64(len(shuffled))], nil
}
