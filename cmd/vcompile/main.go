package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpotapov/go-vcompile/vhtml"
)

// options are the flags shared by all commands.
type options struct {
	html         bool
	keepComments bool
	sourceRange  bool
	condense     bool
	check        bool
	delimiters   string
	verbose      bool
}

func (o *options) vhtmlOptions() (*vhtml.Options, error) {
	opts := &vhtml.Options{}
	if o.html {
		opts = vhtml.HTMLOptions()
	}
	opts.ShouldKeepComment = o.keepComments
	opts.OutputSourceRange = o.sourceRange
	opts.CheckExpressions = o.check
	if o.condense {
		opts.Whitespace = vhtml.WhitespaceCondense
	}

	if o.delimiters != "" {
		openDelim, closeDelim, ok := strings.Cut(o.delimiters, ",")
		if !ok || openDelim == "" || closeDelim == "" {
			return nil, fmt.Errorf("invalid delimiters %q, want OPEN,CLOSE", o.delimiters)
		}
		opts.Delimiters = vhtml.Delimiters{Open: openDelim, Close: closeDelim}
	}

	return opts, nil
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// readTemplate reads the template named by a command argument; "-" is the standard input.
func readTemplate(cmd *cobra.Command, name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(b), nil
}

func newRootCommand() *cobra.Command {
	o := &options{}
	var configPath string

	cmd := &cobra.Command{
		Use:   "vcompile",
		Short: "tokenize and compile HTML templates with {{ }} interpolations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return nil
			}
			return o.loadConfig(configPath, cmd.Flags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&o.html, "html", true, "apply the HTML rules for void elements and implied end tags")
	flags.BoolVar(&o.keepComments, "keep-comments", false, "report comments instead of skipping them")
	flags.BoolVar(&o.sourceRange, "source-range", true, "record the source range of attributes")
	flags.BoolVar(&o.condense, "condense", false, "condense whitespace between tags")
	flags.BoolVar(&o.check, "check", false, "check that bindings parse as expressions")
	flags.StringVar(&o.delimiters, "delimiters", "", `interpolation delimiters as "OPEN,CLOSE" (default "{{,}}")`)
	flags.StringVar(&configPath, "config", "", "YAML file with default option values")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newTokensCommand(o))
	cmd.AddCommand(newASTCommand(o))
	cmd.AddCommand(newCompileCommand(o))
	cmd.AddCommand(newServeCommand(o))

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCommand()

	info, ok := debug.ReadBuildInfo()
	if !ok {
		cmd.Version = "unknown"
	} else {
		cmd.Version = info.Main.Version
	}

	cmd.InitDefaultVersionFlag()

	cmd.SilenceUsage = true

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
