package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandlerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo))
	logger.Debug("hidden")
	logger.Warn("query failed", "method", "chainx_getOrders")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "WARN", line["severity"])
	require.Equal(t, "query failed", line["message"])
	require.Equal(t, "chainx_getOrders", line["method"])
	require.Contains(t, line, "timestamp")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, level)
	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)
	_, err = ParseLevel("verbose")
	require.Error(t, err)
}

func TestMaskField(t *testing.T) {
	require.Equal(t, RedactedValue, MaskField("subject", "alice").Value.String())
	require.Equal(t, "chainx_getAssets", MaskField("method", "chainx_getAssets").Value.String())
	require.Equal(t, "", MaskField("subject", "").Value.String())
}

func TestMaskRemote(t *testing.T) {
	require.Equal(t, "10.1.2.0", MaskRemote("remote", "10.1.2.3:5555").Value.String())
	require.Equal(t, "2001:db8:1::", MaskRemote("remote", "[2001:db8:1:2::7]:80").Value.String())
	require.Equal(t, RedactedValue, MaskRemote("remote", "unix-socket").Value.String())
}
