package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/KasperOmsK/pipes/internal/script"
	"github.com/KasperOmsK/pipes/internal/slogc"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globals struct {
	filename string
	flags    Config
}

func (g *globals) config() (Config, error) {
	cfg, err := loadConfig(g.filename)
	if err != nil {
		return cfg, err
	}
	cfg.merge(g.flags)
	return cfg, cfg.validate()
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pipes",
		Short:         "pipes runs line pipelines such as 'trim | squeeze | take 10'",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	g := &globals{}
	cmd.PersistentFlags().StringVar(&g.filename, "config", "", "config file to load")
	cmd.PersistentFlags().StringVar(&g.flags.LogLevel, "log-level", "", "log level to use")
	cmd.PersistentFlags().StringVar(&g.flags.LogFormat, "log-format", "", "log formatter to use")

	cmd.AddCommand(runCmd(g))
	cmd.AddCommand(checkCmd())
	cmd.AddCommand(stagesCmd())

	return cmd
}

func runCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <expr> [file...]",
		Short: "run a pipeline over files or stdin",
		Args:  cobra.MinimumNArgs(1),
	}

	var named []string
	cmd.Flags().StringArrayVar(&named, "pipeline", nil, "named pipeline as name=expr, may be repeated")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		for _, def := range named {
			name, expr, ok := strings.Cut(def, "=")
			if !ok {
				return fmt.Errorf("invalid pipeline %q, expected name=expr", def)
			}
			if g.flags.Pipelines == nil {
				g.flags.Pipelines = map[string]string{}
			}
			g.flags.Pipelines[name] = expr
		}

		cfg, err := g.config()
		if err != nil {
			return err
		}
		logger, err := slogc.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		prog, err := script.Parse(args[0], script.Options{
			Named:   cfg.Pipelines,
			Inspect: cmd.ErrOrStderr(),
			Logger:  logger,
		})
		if err != nil {
			return err
		}

		inputs, closeAll, err := openInputs(args[1:], cmd.InOrStdin(), logger)
		if err != nil {
			return err
		}
		defer closeAll()

		return prog.Output(script.Input(cmd.Context(), inputs...), cmd.OutOrStdout())
	}

	return cmd
}

func openInputs(files []string, stdin io.Reader, logger *slog.Logger) ([]io.Reader, func(), error) {
	if len(files) == 0 {
		return []io.Reader{stdin}, func() {}, nil
	}

	var (
		inputs []io.Reader
		opened []*os.File
	)
	closeAll := func() {
		for _, f := range opened {
			if err := f.Close(); err != nil {
				logger.Warn("cannot close input", "file", f.Name(), "err", err)
			}
		}
	}
	for _, name := range files {
		if name == "-" {
			inputs = append(inputs, stdin)
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		slogc.Fine(logger, "opened input", "file", name)
		opened = append(opened, f)
		inputs = append(inputs, f)
	}
	return inputs, closeAll, nil
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <config-file>",
		Short: "check configuration file",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}
		if err := cfg.validate(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pipelines ok\n", args[0], len(cfg.Pipelines))
		return nil
	}

	return cmd
}

func stagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "list the stages usable in expressions",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, info := range script.Stages() {
			help := info.Help
			if info.Terminal {
				help += " (terminal)"
			}
			fmt.Fprintf(w, "%s\t%s\n", info, help)
		}
		return w.Flush()
	}

	return cmd
}
