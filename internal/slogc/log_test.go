package slogc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("fine", "text", &buf)
	require.NoError(t, err)

	Fine(logger, "hello", "k", "v")
	require.Contains(t, buf.String(), "level=FINE msg=hello k=v")

	buf.Reset()
	logger, err = New("", "", &buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "msg=shown")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "json", &buf)
	require.NoError(t, err)

	logger.Warn("careful", "n", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "WARN", rec["level"])
	require.Equal(t, "careful", rec["msg"])
	require.EqualValues(t, 3, rec["n"])
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", "text", &bytes.Buffer{})
	require.ErrorContains(t, err, "invalid level 'loud'")

	_, err = New("info", "xml", &bytes.Buffer{})
	require.ErrorContains(t, err, "invalid format 'xml'")
}
