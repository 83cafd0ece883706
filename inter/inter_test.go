package inter

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteID(t *testing.T) {
	tests := []struct {
		kind     VoteKind
		instance uint32
	}{
		{VoteCouncil, 0},
		{VoteBlockProducer, 1},
		{VoteBenefactor, 0xffffff},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			v := NewVoteID(tt.kind, tt.instance)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.instance, v.Instance())
		})
	}
}

func TestPriceConvertRoundsDown(t *testing.T) {
	const usd AssetID = 1
	feed := Price{Base: usd.Amount(101), Quote: CoreAsset.Amount(5)}

	got, err := feed.Convert(usd.Amount(191))
	require.NoError(t, err)
	assert.Equal(t, CoreAsset.Amount(9), got)

	got, err = feed.Convert(usd.Amount(3))
	require.NoError(t, err)
	assert.Equal(t, CoreAsset.Amount(0), got)

	got, err = feed.Convert(CoreAsset.Amount(1))
	require.NoError(t, err)
	assert.Equal(t, usd.Amount(20), got)

	_, err = feed.Convert(AssetID(7).Amount(1))
	assert.ErrorIs(t, err, ErrAssetMismatch)

	_, err = Price{}.Convert(usd.Amount(1))
	assert.ErrorIs(t, err, ErrNullPrice)
}

func TestPriceCmp(t *testing.T) {
	const usd AssetID = 1
	a := Price{Base: usd.Amount(1), Quote: CoreAsset.Amount(3)}
	b := Price{Base: usd.Amount(1), Quote: CoreAsset.Amount(2)}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.Equal(t, 0, a.Cmp(Price{Base: usd.Amount(2), Quote: CoreAsset.Amount(6)}))
}

func TestPriceScaleRatio(t *testing.T) {
	const usd AssetID = 1
	p := Price{Base: usd.Amount(10), Quote: CoreAsset.Amount(4)}
	got := p.ScaleRatio(1750, 1000)
	assert.Equal(t, 0, got.Cmp(Price{Base: usd.Amount(17500), Quote: CoreAsset.Amount(4000)}))

	huge := Price{Base: usd.Amount(MaxShareSupply), Quote: CoreAsset.Amount(MaxShareSupply)}
	got = huge.ScaleRatio(2000, 1000)
	assert.LessOrEqual(t, int64(got.Base.Amount), int64(MaxShareSupply))
	assert.LessOrEqual(t, int64(got.Quote.Amount), int64(MaxShareSupply))
}

func TestAuthorityAddWeight(t *testing.T) {
	var a Authority
	a.AddWeight(9, 2)
	a.AddWeight(3, 1)
	a.AddWeight(9, 4)
	assert.Equal(t, []AccountWeight{{3, 1}, {9, 6}}, a.AccountAuths)
	assert.Equal(t, uint64(7), a.TotalWeight())
	assert.Equal(t, uint16(6), a.Weight(9))

	cp := a.Copy()
	cp.AccountAuths[0].Weight = 100
	assert.Equal(t, uint16(1), a.Weight(3))
}

func TestShareRLP(t *testing.T) {
	for _, v := range []Share{0, 1, -1, MaxShareSupply, -MaxShareSupply} {
		var buf bytes.Buffer
		require.NoError(t, rlp.Encode(&buf, v))
		var got Share
		require.NoError(t, rlp.DecodeBytes(buf.Bytes(), &got))
		assert.Equal(t, v, got)
	}
}

func TestTimestamp(t *testing.T) {
	ts := Timestamp(1700000000)
	assert.Equal(t, ts, BytesToTimestamp(ts.Bytes()))
	assert.Equal(t, uint32(10), ts.Sub(ts-10))
	assert.Equal(t, uint32(0), (ts - 10).Sub(ts))
	assert.Equal(t, MaxTimestamp, FromUnix(1<<40))
}
