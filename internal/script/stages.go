package script

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/KasperOmsK/pipes"
	"github.com/caffix/stringset"
)

// Line is a pipe stage over text lines.
type Line = pipes.Stage[string, string]

type stageDef struct {
	args  []string
	help  string
	build func(b *builder, args []string) (Line, error)
}

type sinkDef struct {
	help string
	sink pipes.Sink[string, string]
}

// StageInfo describes a stage usable in an expression.
type StageInfo struct {
	Name     string
	Args     []string
	Help     string
	Terminal bool
}

func (s StageInfo) String() string {
	return strings.Join(append([]string{s.Name}, s.Args...), " ")
}

var stages = map[string]stageDef{
	"squeeze":   fixed("collapse runs of identical lines", pipes.Squeeze[string]),
	"unique":    fixed("drop lines already seen", pipes.Unique[string]),
	"unique-i":  fixed("drop lines already seen, ignoring case", uniqueFold),
	"butlast":   fixed("drop the last line", pipes.Butlast[string]),
	"alternate": fixed("keep every other line, starting with the first", pipes.Alternate[string]),
	"reverse":   fixed("reverse the order of lines", pipes.Reverse[string]),
	"sort":      fixed("sort lines", pipes.Sort[string]),
	"truthy":    fixed("drop empty lines", pipes.Truthy[string]),
	"trim":      mapper("trim surrounding whitespace", strings.TrimSpace),
	"upper":     mapper("convert to upper case", strings.ToUpper),
	"lower":     mapper("convert to lower case", strings.ToLower),
	"number": fixed("prefix lines with their number", func(p pipes.Pipe[string]) pipes.Pipe[string] {
		return pipes.Map(pipes.Enumerate(p, 1), func(l pipes.Indexed[string]) string {
			return fmt.Sprintf("%d\t%s", l.Index, l.Value)
		})
	}),
	"assert-nonempty": fixed("fail on the first empty line", func(p pipes.Pipe[string]) pipes.Pipe[string] {
		return pipes.AssertEach(p, func(l string) bool { return l != "" })
	}),
	"take":    counted("keep the first N lines", pipes.Take[string]),
	"drop":    counted("skip the first N lines", pipes.Drop[string]),
	"tail":    counted("keep the last N lines", pipes.Tail[string]),
	"chunks":  grouped("join complete groups of N lines with a space", pipes.Chunks[string]),
	"batches": grouped("join groups of N lines with a space, keeping the last short group", pipes.Batches[string]),
	"grep": {
		args: []string{"RE"},
		help: "keep lines matching RE",
		build: func(_ *builder, args []string) (Line, error) {
			re, err := regexp.Compile(args[0])
			if err != nil {
				return nil, err
			}
			return pipes.Bind(pipes.Filter[string], re.MatchString), nil
		},
	},
	"grepv": {
		args: []string{"RE"},
		help: "drop lines matching RE",
		build: func(_ *builder, args []string) (Line, error) {
			re, err := regexp.Compile(args[0])
			if err != nil {
				return nil, err
			}
			return pipes.Bind(pipes.Reject[string], re.MatchString), nil
		},
	},
	"interpose": {
		args: []string{"SEP"},
		help: "insert SEP between lines",
		build: func(_ *builder, args []string) (Line, error) {
			return pipes.Bind(pipes.Interpose[string], args[0]), nil
		},
	},
	"inspect": {
		help: "print every line to stderr as it passes",
		build: func(b *builder, _ []string) (Line, error) {
			return pipes.Bind(pipes.Inspect[string], b.opts.Inspect), nil
		},
	},
	"log": {
		help: "log every line at debug level",
		build: func(b *builder, _ []string) (Line, error) {
			return func(p pipes.Pipe[string]) pipes.Pipe[string] {
				return pipes.Log(p, b.logger, "line")
			}, nil
		},
	},
}

var sinks = map[string]sinkDef{
	"count": {
		help: "print the number of lines",
		sink: func(p pipes.Pipe[string]) (string, error) {
			n, err := pipes.Len(p)
			return strconv.Itoa(n), err
		},
	},
	"first": {help: "print the first line", sink: pipes.First[string]},
	"last":  {help: "print the last line", sink: pipes.Last[string]},
	"sum": {
		help: "print the sum of numeric lines",
		sink: func(p pipes.Pipe[string]) (string, error) {
			numbers := pipes.TryMap(p, func(l string) (float64, error) {
				return strconv.ParseFloat(strings.TrimSpace(l), 64)
			})
			total, err := pipes.Sum(numbers)
			return strconv.FormatFloat(total, 'f', -1, 64), err
		},
	},
}

// Stages lists the stages and terminals available in expressions, sorted by
// name.
func Stages() []StageInfo {
	var out []StageInfo
	for name, s := range stages {
		out = append(out, StageInfo{Name: name, Args: s.args, Help: s.help})
	}
	for name, s := range sinks {
		out = append(out, StageInfo{Name: name, Help: s.help, Terminal: true})
	}
	slices.SortFunc(out, func(a, b StageInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func fixed(help string, s Line) stageDef {
	return stageDef{
		help: help,
		build: func(*builder, []string) (Line, error) {
			return s, nil
		},
	}
}

func mapper(help string, fn func(string) string) stageDef {
	return fixed(help, pipes.Bind(pipes.Map[string, string], fn))
}

func counted(help string, fn func(pipes.Pipe[string], int) pipes.Pipe[string]) stageDef {
	return stageDef{
		args: []string{"N"},
		help: help,
		build: func(_ *builder, args []string) (Line, error) {
			n, err := parseCount(args[0], false)
			if err != nil {
				return nil, err
			}
			return pipes.Bind(fn, n), nil
		},
	}
}

func grouped(help string, fn func(pipes.Pipe[string], int) pipes.Pipe[[]string]) stageDef {
	return stageDef{
		args: []string{"N"},
		help: help,
		build: func(_ *builder, args []string) (Line, error) {
			n, err := parseCount(args[0], true)
			if err != nil {
				return nil, err
			}
			groups := pipes.Then(pipes.P[string](), pipes.Bind(fn, n))
			joined := pipes.Then(groups, pipes.Bind(pipes.Map[[]string, string], func(g []string) string {
				return strings.Join(g, " ")
			}))
			return joined.Stage(), nil
		},
	}
}

var (
	errNegative    = errors.New("must not be negative")
	errNotPositive = errors.New("must be positive")
)

func parseCount(arg string, positive bool) (int, error) {
	n, err := strconv.Atoi(arg)
	switch {
	case err != nil:
		return 0, fmt.Errorf("invalid count %q", arg)
	case positive && n <= 0:
		return 0, fmt.Errorf("count %d %w", n, errNotPositive)
	case n < 0:
		return 0, fmt.Errorf("count %d %w", n, errNegative)
	}
	return n, nil
}

// uniqueFold drops lines already seen, comparing them case-insensitively.
// The first spelling of a line is the one kept.
func uniqueFold(p pipes.Pipe[string]) pipes.Pipe[string] {
	return pipes.FromSeq2(func(yield func(string, error) bool) {
		seen := stringset.New()
		defer seen.Close()

		for line, err := range p.All() {
			if err != nil {
				yield("", err)
				return
			}
			key := strings.ToLower(line)
			if seen.Has(key) {
				continue
			}
			seen.Insert(key)
			if !yield(line, nil) {
				return
			}
		}
	})
}
