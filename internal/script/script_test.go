package script

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/KasperOmsK/pipes"
	"github.com/hashicorp/go-multierror"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		expr string
		want [][]string
	}{
		{"", nil},
		{"   ", nil},
		{"sort", [][]string{{"sort"}}},
		{"trim | take 3", [][]string{{"trim"}, {"take", "3"}}},
		{`grep 'a b' | interpose "|"`, [][]string{{"grep", "a b"}, {"interpose", "|"}}},
		{"grep ''", [][]string{{"grep", ""}}},
		{"a||b", [][]string{{"a"}, nil, {"b"}}},
		{"\tsort\n|\tuniq ", [][]string{{"sort"}, {"uniq"}}},
		{"sort |", [][]string{{"sort"}, nil}},
		{`grep \"a\|b | upper`, [][]string{{"grep", `"a|b`}, {"upper"}}},
		{`grep "say \"hi\"" | interpose it\'s`, [][]string{{"grep", `say "hi"`}, {"interpose", "it's"}}},
		{`grep '(a|b)+'`, [][]string{{"grep", "(a|b)+"}}},
	}
	for _, tt := range tests {
		got, err := split(tt.expr)
		require.NoError(t, err, tt.expr)
		require.Equal(t, tt.want, got, tt.expr)
	}

	for _, expr := range []string{`grep "abc`, `grep 'abc`, `upper \`, "grep (a)"} {
		_, err := split(expr)
		require.ErrorIs(t, err, errSyntax, expr)
	}

	_, err := split("sort > out.txt")
	require.ErrorIs(t, err, errOperator)
	require.ErrorContains(t, err, `'>'`)
}

func run(t *testing.T, expr, input string, opts Options) string {
	t.Helper()
	prog, err := Parse(expr, opts)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, prog.Run(context.Background(), strings.NewReader(input), &out))
	return out.String()
}

func TestRun_Stages(t *testing.T) {
	tests := []struct {
		expr  string
		input string
		want  string
	}{
		{"", "a\nb\n", "a\nb\n"},
		{"squeeze", "a\na\nb\na\n", "a\nb\na\n"},
		{"unique", "a\nb\na\nc\nb\n", "a\nb\nc\n"},
		{"unique-i", "Go\ngo\nrust\nGO\n", "Go\nrust\n"},
		{"take 2", "a\nb\nc\n", "a\nb\n"},
		{"take 0", "a\nb\n", ""},
		{"drop 2", "a\nb\nc\n", "c\n"},
		{"tail 2", "a\nb\nc\n", "b\nc\n"},
		{"butlast", "a\nb\nc\n", "a\nb\n"},
		{"alternate", "a\nb\nc\nd\ne\n", "a\nc\ne\n"},
		{"reverse", "a\nb\nc\n", "c\nb\na\n"},
		{"sort", "b\nc\na\n", "a\nb\nc\n"},
		{"grep ^a", "ab\nba\nac\n", "ab\nac\n"},
		{"grepv ^a", "ab\nba\nac\n", "ba\n"},
		{"grep 'a b'", "a b\nab\n", "a b\n"},
		{"truthy", "a\n\nb\n\n", "a\nb\n"},
		{"chunks 2", "a\nb\nc\n", "a b\n"},
		{"batches 2", "a\nb\nc\n", "a b\nc\n"},
		{"interpose -", "a\nb\nc\n", "a\n-\nb\n-\nc\n"},
		{"trim", "  a \n\tb\n", "a\nb\n"},
		{"upper", "abc\n", "ABC\n"},
		{"lower", "ABC\n", "abc\n"},
		{"number", "a\nb\n", "1\ta\n2\tb\n"},
		{"assert-nonempty", "a\nb\n", "a\nb\n"},
		{"count", "a\nb\nc\n", "3\n"},
		{"count", "", "0\n"},
		{"first", "a\nb\n", "a\n"},
		{"last", "a\nb\n", "b\n"},
		{"sum", "1\n 2.5\n-1\n", "2.5\n"},
		{"trim | truthy | sort | unique | take 2", "b\n\n a\nc\nb\n", "a\nb\n"},
		{"grep x | count", "a\nb\n", "0\n"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, run(t, tt.expr, tt.input, Options{}), "%q", tt.expr)
	}
}

func TestRun_ProgramIsReusable(t *testing.T) {
	prog, err := Parse("squeeze | take 2", Options{})
	require.NoError(t, err)

	for _, input := range []string{"a\na\nb\nc\n", "x\ny\n"} {
		var first, second bytes.Buffer
		require.NoError(t, prog.Run(context.Background(), strings.NewReader(input), &first))
		require.NoError(t, prog.Run(context.Background(), strings.NewReader(input), &second))
		require.Equal(t, first.String(), second.String())
	}
}

func TestRun_NamedPipelines(t *testing.T) {
	opts := Options{Named: map[string]string{
		"clean": "trim | truthy",
		"top":   "@clean | sort | take 2",
	}}

	require.Equal(t, "A\nB\n", run(t, "@top | upper", " c\n\nb \na\n", opts))
	require.Equal(t, "2\n", run(t, "@top | count", "x\ny\nz\n", opts))
}

func TestParse_ReportsAllErrors(t *testing.T) {
	_, err := Parse("take x | nope | grep '(' | | tail 1 2", Options{})
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 5)

	require.ErrorContains(t, merr.Errors[0], `stage 1: take: invalid count "x"`)
	require.ErrorIs(t, merr.Errors[1], ErrUnknownStage)
	require.ErrorContains(t, merr.Errors[2], "stage 3: grep")
	require.ErrorIs(t, merr.Errors[3], ErrEmptyStage)
	require.ErrorIs(t, merr.Errors[4], ErrArguments)
}

func TestParse_Counts(t *testing.T) {
	_, err := Parse("take -1", Options{})
	require.ErrorIs(t, err, errNegative)

	_, err = Parse("chunks 0", Options{})
	require.ErrorIs(t, err, errNotPositive)

	_, err = Parse("batches -3", Options{})
	require.ErrorIs(t, err, errNotPositive)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("grep 'abc", Options{})
	require.ErrorIs(t, err, errSyntax)
}

func TestParse_Terminals(t *testing.T) {
	_, err := Parse("count | sort", Options{})
	require.ErrorIs(t, err, ErrTerminal)

	_, err = Parse("first 3", Options{})
	require.ErrorIs(t, err, ErrArguments)

	_, err = Parse("@n", Options{Named: map[string]string{"n": "sort | count"}})
	require.ErrorIs(t, err, ErrTerminal)
	require.ErrorContains(t, err, "stage 1: @n: stage 2: count")

	prog, err := Parse("sort | last", Options{})
	require.NoError(t, err)
	require.Equal(t, "last", prog.Terminal())
	require.Equal(t, "sort | last", prog.String())
}

func TestParse_NamedErrors(t *testing.T) {
	_, err := Parse("@missing", Options{})
	require.ErrorIs(t, err, ErrUnknownPipeline)

	_, err = Parse("@n 3", Options{Named: map[string]string{"n": "sort"}})
	require.ErrorIs(t, err, ErrArguments)

	_, err = Parse("@n", Options{Named: map[string]string{"n": "sort | bogus"}})
	require.ErrorIs(t, err, ErrUnknownStage)
}

func TestParse_Cycles(t *testing.T) {
	opts := Options{Named: map[string]string{
		"a":    "trim | @b",
		"b":    "@a",
		"self": "@self",
		"ok":   "@leaf | @leaf",
		"leaf": "upper",
	}}

	_, err := Parse("@a", opts)
	require.ErrorIs(t, err, ErrCycle)
	require.ErrorContains(t, err, "@a -> @b -> @a")

	_, err = Parse("sort | @self", opts)
	require.ErrorIs(t, err, ErrCycle)
	require.ErrorContains(t, err, "@self -> @self")

	require.Equal(t, "X\n", run(t, "@ok", "x\n", opts))
}

func TestRun_ErrorStopsOutput(t *testing.T) {
	prog, err := Parse("assert-nonempty", Options{})
	require.NoError(t, err)

	var out bytes.Buffer
	err = prog.Run(context.Background(), strings.NewReader("a\nb\n\nc\n"), &out)
	require.ErrorIs(t, err, pipes.ErrAssertion)
	require.Equal(t, "a\nb\n", out.String())
}

func TestRun_TerminalErrors(t *testing.T) {
	prog, err := Parse("first", Options{})
	require.NoError(t, err)
	err = prog.Run(context.Background(), strings.NewReader(""), &bytes.Buffer{})
	require.ErrorIs(t, err, pipes.ErrEmpty)

	prog, err = Parse("sum", Options{})
	require.NoError(t, err)
	var out bytes.Buffer
	err = prog.Run(context.Background(), strings.NewReader("1\ntwo\n"), &out)

	var perr pipes.PipelineError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "two", perr.Item)
	require.Empty(t, out.String())
}

func TestRun_Canceled(t *testing.T) {
	prog, err := Parse("count", Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = prog.Run(ctx, strings.NewReader("a\nb\n"), &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_Inspect(t *testing.T) {
	var seen bytes.Buffer
	out := run(t, "inspect | take 1", "a\nb\nc\n", Options{Inspect: &seen})
	require.Equal(t, "a\n", out)
	require.Equal(t, "a\n", seen.String())
}

func TestRun_Log(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	require.Equal(t, "x\n", run(t, "log", "x\n", Options{Logger: logger}))
	require.Contains(t, logs.String(), "msg=line index=0 item=x")
	require.Contains(t, logs.String(), "msg=\"pipeline done\"")
}

func TestStages(t *testing.T) {
	infos := Stages()
	require.Len(t, infos, len(stages)+len(sinks))

	names := make([]string, len(infos))
	byName := map[string]StageInfo{}
	for i, info := range infos {
		names[i] = info.Name
		byName[info.Name] = info
	}
	require.IsNonDecreasing(t, names)

	require.True(t, byName["count"].Terminal)
	require.False(t, byName["sort"].Terminal)
	require.Equal(t, "take N", byName["take"].String())
	require.Equal(t, "grep RE", byName["grep"].String())
}

func TestInput_ConcatenatesReaders(t *testing.T) {
	prog, err := Parse("number", Options{})
	require.NoError(t, err)

	src := Input(context.Background(), strings.NewReader("a\nb"), strings.NewReader(""), strings.NewReader("c\n"))
	var out bytes.Buffer
	require.NoError(t, prog.Output(src, &out))
	require.Equal(t, "1\ta\n2\tb\n3\tc\n", out.String())
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestOutput_WriteError(t *testing.T) {
	boom := errors.New("disk full")
	prog, err := Parse("upper", Options{})
	require.NoError(t, err)

	long := strings.Repeat("x", 8192)
	err = prog.Run(context.Background(), strings.NewReader(long+"\nnext\n"), failingWriter{err: boom})
	require.ErrorIs(t, err, boom)

	err = prog.Run(context.Background(), strings.NewReader("short\n"), failingWriter{err: boom})
	require.ErrorIs(t, err, boom)
}
