package maint

import (
	"github.com/rony4d/go-dxp-maint/inter"
)

// NextMaintenanceTime returns the first interval boundary after block and
// the number of whole intervals that were skipped to get there. The first
// block aligns maintenance to a multiple of interval.
func NextMaintenanceTime(block inter.Block, scheduled inter.Timestamp, interval uint32) (inter.Timestamp, uint32) {
	if scheduled > block.Time {
		return scheduled, 0
	}
	if block.Number == 1 {
		return (block.Time/inter.Timestamp(interval) + 1) * inter.Timestamp(interval), 0
	}
	skipped := uint32(block.Time-scheduled) / interval
	return scheduled + inter.Timestamp((skipped+1)*interval), skipped
}
