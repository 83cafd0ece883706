package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	for verbosity, want := range []logrus.Level{
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
		logrus.DebugLevel,
		logrus.TraceLevel,
	} {
		got, err := Level(verbosity)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := Level(6)
	assert.Error(t, err)
	_, err = Level(-1)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(Config{Verbosity: 2, Format: "json"}, &buf)
		require.NoError(t, err)

		log.WithField("module", "budget").Info("dropped")
		assert.Zero(t, buf.Len())

		log.WithField("module", "budget").Warn("kept")
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "budget", entry["module"])
		assert.Equal(t, "warning", entry["level"])
	})
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(DefaultConfig(), &buf)
		require.NoError(t, err)
		log.WithField("block", 7).Info("Maintenance started")
		assert.Contains(t, buf.String(), `msg="Maintenance started" block=7`)
	})
	t.Run("bad format", func(t *testing.T) {
		_, err := New(Config{Verbosity: 3, Format: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
	t.Run("bad dsn", func(t *testing.T) {
		_, err := New(Config{Verbosity: 3, SentryDSN: "::not a dsn"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}
