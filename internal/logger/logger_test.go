package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/learnflow/internal/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true), logger.WithLevel(logger.WARN))

	log.Debug("debug %d", 1)
	log.Info("info")
	log.Warn("warn %s", "x")
	log.Error("error")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "warn x", recs[0]["message"])
	assert.Equal(t, "warn", recs[0]["level"])
	assert.Equal(t, "error", recs[1]["level"])
}

func TestLogger_FieldsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(logger.WithOutput(&buf), logger.WithJSON(true), logger.WithLevel(logger.DEBUG))

	log := base.WithPrefix("coaching").WithFields(map[string]any{"profile_id": "p1"}).WithField("hit", true)
	log.Info("cache lookup")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "coaching", recs[0]["component"])
	assert.Equal(t, "p1", recs[0]["profile_id"])
	assert.Equal(t, true, recs[0]["hit"])
	assert.Contains(t, recs[0]["caller"], "logger_test.go")

	// Derived loggers never leak fields back into their parent.
	buf.Reset()
	base.Info("plain")
	recs = decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.NotContains(t, recs[0], "profile_id")
}

func TestLogger_Context(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true))

	ctx := logger.NewContext(context.Background(), log)
	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel("ERROR"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
}
