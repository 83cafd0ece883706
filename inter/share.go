package inter

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// Share is an amount of an asset expressed in its smallest indivisible unit.
// It is signed because supply deltas may be negative; balances never are.
type Share int64

// MaxShareSupply bounds every asset supply and every single amount.
const MaxShareSupply Share = 1000000000000000

// EncodeRLP encodes the two's complement bit pattern as an RLP unsigned integer.
func (s Share) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, uint64(s))
}

// DecodeRLP restores a value written by EncodeRLP.
func (s *Share) DecodeRLP(st *rlp.Stream) error {
	v, err := st.Uint()
	if err != nil {
		return err
	}
	*s = Share(v)
	return nil
}

// Uint64 returns the amount as an unsigned integer, or zero when negative.
func (s Share) Uint64() uint64 {
	if s < 0 {
		return 0
	}
	return uint64(s)
}

// MinShare returns the smaller amount.
func MinShare(a, b Share) Share {
	if a < b {
		return a
	}
	return b
}

// MaxShare returns the larger amount.
func MaxShare(a, b Share) Share {
	if a > b {
		return a
	}
	return b
}
