// Package script builds pipelines over text lines from short expressions such
// as "trim | squeeze | grep ^a | take 3".
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/KasperOmsK/pipes"
	"github.com/hashicorp/go-multierror"
)

var (
	ErrUnknownStage    = errors.New("unknown stage")
	ErrUnknownPipeline = errors.New("unknown pipeline")
	ErrEmptyStage      = errors.New("empty stage")
	ErrArguments       = errors.New("wrong number of arguments")
	ErrTerminal        = errors.New("misplaced terminal")
	ErrCycle           = errors.New("pipeline cycle")
)

// Options configure how expressions are parsed.
type Options struct {
	// Named pipelines, referenced from expressions as @name.
	Named map[string]string
	// Inspect receives the output of inspect stages. Defaults to stderr.
	Inspect io.Writer
	Logger  *slog.Logger
}

// Program is a parsed expression, ready to run against any number of inputs.
type Program struct {
	expr     string
	chain    pipes.Chain[string, string]
	terminal string
	sink     pipes.Sink[string, string]
	logger   *slog.Logger
}

// Parse builds a Program from expr. All problems found in expr are reported
// together.
func Parse(expr string, opts Options) (*Program, error) {
	if opts.Inspect == nil {
		opts.Inspect = os.Stderr
	}
	b := &builder{opts: opts, logger: opts.Logger}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}

	chain, terminal, err := b.build(expr, true)
	if err != nil {
		return nil, err
	}
	prog := &Program{
		expr:     strings.TrimSpace(expr),
		chain:    chain,
		terminal: terminal,
		logger:   b.logger,
	}
	if terminal != "" {
		prog.sink = pipes.Finish(chain, sinks[terminal].sink)
	}
	b.logger.Debug("parsed pipeline", "expr", prog.expr, "stages", chain.Len(), "terminal", terminal)
	return prog, nil
}

func (p *Program) String() string {
	return p.expr
}

// Terminal returns the name of the final terminal, or "" if the program
// writes every line it produces.
func (p *Program) Terminal() string {
	return p.terminal
}

// Run reads lines from r, passes them through the program and writes the
// result to w, one line per value. It stops at the first error, including the
// cancellation of ctx.
func (p *Program) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	return p.Output(Input(ctx, r), w)
}

// Output passes src through the program and writes the result to w.
func (p *Program) Output(src pipes.Pipe[string], w io.Writer) error {
	if p.sink != nil {
		res, err := p.sink(src)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, res)
		return err
	}

	bw := bufio.NewWriter(w)
	written := 0
	for line, err := range p.chain.Apply(src).All() {
		if err != nil {
			if ferr := bw.Flush(); ferr != nil {
				p.logger.Warn("could not flush output", "err", ferr)
			}
			return err
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		written++
	}
	p.logger.Debug("pipeline done", "expr", p.expr, "lines", written)
	return bw.Flush()
}

// Input returns the lines of every reader in turn. It ends with ctx.Err()
// once ctx is done.
func Input(ctx context.Context, readers ...io.Reader) pipes.Pipe[string] {
	sources := make([]pipes.Pipe[string], len(readers))
	for i, r := range readers {
		sources[i] = pipes.Lines(r)
	}
	return pipes.FromSeq2(func(yield func(string, error) bool) {
		for line, err := range pipes.Concat(sources...).All() {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	})
}

type builder struct {
	opts   Options
	logger *slog.Logger
	active []string
}

func (b *builder) build(expr string, top bool) (pipes.Chain[string, string], string, error) {
	chain := pipes.P[string]()

	segments, err := split(expr)
	if err != nil {
		return chain, "", err
	}

	var (
		errs     *multierror.Error
		terminal string
	)
	for i, words := range segments {
		pos := i + 1
		if len(words) == 0 {
			errs = multierror.Append(errs, fmt.Errorf("stage %d: %w", pos, ErrEmptyStage))
			continue
		}
		name, args := words[0], words[1:]

		if ref, ok := strings.CutPrefix(name, "@"); ok {
			sub, err := b.expand(ref, args)
			if err != nil {
				errs = AppendPrefixed(errs, fmt.Sprintf("stage %d: @%s", pos, ref), err)
				continue
			}
			chain = chain.Then(sub.Stage())
			continue
		}

		if _, ok := sinks[name]; ok {
			switch {
			case !top:
				errs = multierror.Append(errs, fmt.Errorf("stage %d: %s: %w: not allowed in a named pipeline", pos, name, ErrTerminal))
			case pos != len(segments):
				errs = multierror.Append(errs, fmt.Errorf("stage %d: %s: %w: must be the last stage", pos, name, ErrTerminal))
			case len(args) != 0:
				errs = multierror.Append(errs, fmt.Errorf("stage %d: %s: %w: takes none, got %d", pos, name, ErrArguments, len(args)))
			default:
				terminal = name
			}
			continue
		}

		def, ok := stages[name]
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("stage %d: %w %q", pos, ErrUnknownStage, name))
			continue
		}
		if len(args) != len(def.args) {
			errs = multierror.Append(errs, fmt.Errorf("stage %d: %s: %w: takes %d, got %d", pos, name, ErrArguments, len(def.args), len(args)))
			continue
		}
		stage, err := def.build(b, args)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("stage %d: %s: %w", pos, name, err))
			continue
		}
		chain = chain.Then(stage)
	}
	return chain, terminal, errs.ErrorOrNil()
}

func (b *builder) expand(name string, args []string) (pipes.Chain[string, string], error) {
	if len(args) != 0 {
		return pipes.Chain[string, string]{}, fmt.Errorf("%w: takes none, got %d", ErrArguments, len(args))
	}
	body, ok := b.opts.Named[name]
	if !ok {
		return pipes.Chain[string, string]{}, ErrUnknownPipeline
	}
	for i, seen := range b.active {
		if seen == name {
			path := append(slices.Clone(b.active[i:]), name)
			return pipes.Chain[string, string]{}, fmt.Errorf("%w: @%s", ErrCycle, strings.Join(path, " -> @"))
		}
	}

	b.active = append(b.active, name)
	defer func() { b.active = b.active[:len(b.active)-1] }()

	chain, _, err := b.build(body, false)
	return chain, err
}

// AppendPrefixed appends err to errs with every message prefixed. The errors
// of a *multierror.Error are appended one by one, so nested failures render
// as a single flat list.
func AppendPrefixed(errs *multierror.Error, prefix string, err error) *multierror.Error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", prefix, e))
		}
		return errs
	}
	return multierror.Append(errs, fmt.Errorf("%s: %w", prefix, err))
}
