package pipes_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/KasperOmsK/pipes"

	"github.com/stretchr/testify/require"
)

type brokenWriter struct{ err error }

func (w brokenWriter) Write([]byte) (int, error) { return 0, w.err }

func TestInspect(t *testing.T) {
	var buf bytes.Buffer

	vals := collect(t, pipes.Inspect(pipes.Of("a", "b"), &buf))

	require.Equal(t, []string{"a", "b"}, vals)
	require.Equal(t, "a\nb\n", buf.String())
}

func TestInspect_WriteError(t *testing.T) {
	boom := errors.New("pipe closed")

	err := pipes.Consume(pipes.Inspect(pipes.Range(0, 3), brokenWriter{err: boom}))

	require.ErrorIs(t, err, boom)
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	vals := collect(t, pipes.Log(pipes.Of(4, 5), logger, "seen"))

	require.Equal(t, []int{4, 5}, vals)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "level=DEBUG msg=seen index=0 item=4")
	require.Contains(t, lines[1], "msg=seen index=1 item=5")
}

func TestLog_SilentAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	collect(t, pipes.Log(pipes.Of(4, 5), logger, "seen"))

	require.Empty(t, buf.String())
}

func TestAssertEach(t *testing.T) {
	evens := pipes.Filter(pipes.Range(0, 9), isEven)

	require.NoError(t, pipes.Consume(pipes.AssertEach(evens, isEven)))
}

func TestAssertEach_Fails(t *testing.T) {
	vals, err := pipes.Collect(pipes.AssertEach(pipes.Of(2, 4, 5, 6), isEven))

	require.Equal(t, []int{2, 4}, vals)
	require.ErrorIs(t, err, pipes.ErrAssertion)

	var perr pipes.PipelineError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 5, perr.Item)
}
