package launcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/inter"
	"github.com/rony4d/go-dxp-maint/inter/ledger"
	"github.com/rony4d/go-dxp-maint/maint"
	"github.com/rony4d/go-dxp-maint/store"
)

// loadState reads a JSON snapshot from path, or the archived snapshot when
// path is empty.
func loadState(path string, db *store.Store) (*ledger.State, error) {
	if path == "" {
		st, err := db.State()
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.New("no archived snapshot, pass --state")
		}
		return st, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	st := new(ledger.State)
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	st.Sort()
	return st, nil
}

// Replay runs maintenance for block on st and archives the resulting record
// and snapshot. Nothing is written when the pass fails.
func Replay(e *maint.Engine, db *store.Store, st *ledger.State, block inter.Block, log logrus.FieldLogger) (ledger.IntervalRecord, error) {
	out, next, err := e.Apply(st, block)
	if err != nil {
		return ledger.IntervalRecord{}, err
	}
	out.Dynamic.HeadBlockNumber = block.Number
	out.Dynamic.Time = block.Time

	rec := ledger.NewIntervalRecord(out, block.Time)
	if err := db.Commit(out, rec); err != nil {
		return rec, err
	}
	log.WithFields(logrus.Fields{
		"block":     block.Number,
		"time":      block.Time,
		"next":      next,
		"producers": len(rec.ActiveBlockProducers),
		"council":   len(rec.ActiveCouncil),
		"hash":      rec.StateHash.String(),
	}).Info("Interval archived")
	return rec, nil
}
