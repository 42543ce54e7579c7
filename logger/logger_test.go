package logger

import (
	"bytes"
	"testing"

	"github.com/benoitkugler/vformat/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestChannels(t *testing.T) {
	defer ResetForTest()

	var buf bytes.Buffer
	err := Initialize(config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	ProgressLogger.Printf("Step %d - %s", 1, "cascade")
	WarningLogger.Log("ignored declaration", zap.String("property", "colr"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"Step 1 - cascade"`)
	assert.Contains(t, out, `"logger":"vformat.progress"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"property":"colr"`)
}

func TestLevelFilter(t *testing.T) {
	defer ResetForTest()

	var buf bytes.Buffer
	require.NoError(t, Initialize(config.LogConfig{Level: "warn", Format: "console"}, zapcore.AddSync(&buf)))
	ProgressLogger.Printf("hidden")
	assert.Empty(t, buf.String())

	assert.Error(t, Initialize(config.LogConfig{Level: "loud"}, zapcore.AddSync(&buf)))
}

func TestReplace(t *testing.T) {
	defer ResetForTest()

	nop := zap.NewNop()
	restore := Replace(nop)
	assert.Same(t, nop, L())
	restore()
	assert.NotSame(t, nop, L())
}
