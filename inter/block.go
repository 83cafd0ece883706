// Package inter defines the core value types shared by every stage of chain
// maintenance: timestamps, amounts, object identifiers, vote targets, prices
// and authorities. This file contains the Block structure, the minimal view of
// the block whose application triggers a maintenance pass.
//
// Key concepts:
//   - Block: the about-to-be-applied block (height, timestamp, producer)
//   - Timestamp: chain time in whole seconds
//   - Share: signed amount of the smallest indivisible asset unit
//
// Usage:
//
//	blk := inter.Block{Number: 1000, Time: inter.Timestamp(1700000000)}
//	if blk.Time >= dynamic.NextMaintenanceTime {
//	    next, err := engine.Run(state, blk, rules)
//	}
package inter

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// Block represents the block being applied when maintenance runs. The
// maintenance pass reads only the block height and timestamp: the height gates
// the schedule shuffle, the timestamp is "now" for every time-dependent rule.
type Block struct {
	// Number is the height of the block. Block 1 is the first block after
	// genesis and schedules the first maintenance time differently.
	Number idx.Block

	// Time is the block timestamp. All decay, budget and feed computations of
	// the pass use this value as the current time.
	Time Timestamp

	// Producer is the block producer that signed the block.
	Producer idx.ValidatorID
}

// String returns a compact representation used in log fields.
func (b Block) String() string {
	return fmt.Sprintf("#%d@%d", b.Number, b.Time)
}
