package inter

import (
	"math"
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// Timestamp is chain time in whole seconds since the Unix epoch. All
// consensus-relevant time arithmetic is done on this type, never on
// time.Time, so that every node rounds identically.
type Timestamp uint32

// MaxTimestamp marks "never": lifetime memberships and unset upgrades use it.
const MaxTimestamp = Timestamp(math.MaxUint32)

// SecondsPerDay is the length of the day used to prorate daily pay rates.
const SecondsPerDay = 86400

// FromUnix converts Unix seconds into a Timestamp, clamping out-of-range values.
func FromUnix(sec int64) Timestamp {
	if sec < 0 {
		return 0
	}
	if sec > math.MaxUint32 {
		return MaxTimestamp
	}
	return Timestamp(sec)
}

// Unix returns the timestamp as Unix seconds.
func (t Timestamp) Unix() int64 {
	return int64(t)
}

// Time converts the timestamp into a UTC time.Time for display.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t == 0
}

// Bytes returns the big-endian encoding, which sorts in time order.
func (t Timestamp) Bytes() []byte {
	return bigendian.Uint32ToBytes(uint32(t))
}

// BytesToTimestamp decodes a value produced by Timestamp.Bytes.
func BytesToTimestamp(b []byte) Timestamp {
	return Timestamp(bigendian.BytesToUint32(b))
}

// Sub returns t-u in seconds, or zero when u is not before t.
func (t Timestamp) Sub(u Timestamp) uint32 {
	if u >= t {
		return 0
	}
	return uint32(t - u)
}

// String formats the timestamp as RFC 3339.
func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339)
}
