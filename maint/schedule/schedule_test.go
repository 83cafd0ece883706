package schedule

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
)

func TestShuffle(t *testing.T) {
	for _, tt := range []struct {
		active []inter.BlockProducerID
		now    inter.Timestamp
		want   []inter.BlockProducerID
	}{
		{[]inter.BlockProducerID{1, 2, 3, 4, 5}, 1700000000, []inter.BlockProducerID{5, 4, 1, 3, 2}},
		{[]inter.BlockProducerID{1, 2, 3, 4, 5}, 1700000001, []inter.BlockProducerID{4, 1, 2, 5, 3}},
		{[]inter.BlockProducerID{10, 20, 30}, 86400, []inter.BlockProducerID{10, 30, 20}},
		{[]inter.BlockProducerID{7}, 12345, []inter.BlockProducerID{7}},
	} {
		t.Run(tt.now.String(), func(t *testing.T) {
			input := append([]inter.BlockProducerID(nil), tt.active...)
			got := Shuffle(input, tt.now)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.active, input, "input must stay untouched")
			assert.ElementsMatch(t, tt.active, got)
		})
	}
}

func TestShuffleDeterministic(t *testing.T) {
	active := []inter.BlockProducerID{3, 8, 9, 11, 15, 20, 21}
	assert.Equal(t, Shuffle(active, 1600000000), Shuffle(active, 1600000000))
}

func TestUpdate(t *testing.T) {
	logger, hook := test.NewNullLogger()
	st := &ledger.State{}
	st.Global.ActiveBlockProducers = []inter.BlockProducerID{1, 2, 3, 4, 5}

	require.False(t, Update(st, inter.Block{Number: 7, Time: 1700000000}, logger))
	assert.Empty(t, st.Schedule.CurrentShuffled)

	require.True(t, Update(st, inter.Block{Number: 10, Time: 1700000000}, logger))
	assert.Equal(t, []inter.BlockProducerID{5, 4, 1, 3, 2}, st.Schedule.CurrentShuffled)

	st.Global.ActiveBlockProducers = nil
	require.False(t, Update(st, inter.Block{Number: 10}, logger))
	assert.Equal(t, "No active block producers, schedule kept", hook.LastEntry().Message)
}

func TestScheduledProducer(t *testing.T) {
	st := &ledger.State{}
	_, err := ScheduledProducer(st, 0)
	require.ErrorIs(t, err, ErrEmptySchedule)

	st.Schedule.CurrentShuffled = []inter.BlockProducerID{5, 4, 1}
	st.Dynamic.CurrentAslot = 10
	for slot, want := range []inter.BlockProducerID{4, 1, 5, 4} {
		got, err := ScheduledProducer(st, uint64(slot))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
