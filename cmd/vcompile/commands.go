package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dpotapov/go-vcompile"
	"github.com/dpotapov/go-vcompile/vhtml"
)

func newTokensCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "print the tokenizer events of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := o.vhtmlOptions()
			if err != nil {
				return err
			}
			src, err := readTemplate(cmd, args[0])
			if err != nil {
				return err
			}
			writeTokens(cmd.OutOrStdout(), src, opts)
			return nil
		},
	}
}

// writeTokens prints one line per tokenizer event, prefixed with its source range.
func writeTokens(w io.Writer, src string, opts *vhtml.Options) {
	line := func(start, end int, format string, args ...any) {
		fmt.Fprintf(w, "%4d:%-4d "+format+"\n", append([]any{start, end}, args...)...)
	}

	vhtml.Tokenize(src, opts, vhtml.Callbacks{
		StartTag: func(tag string, attrs []vhtml.Attr, unary bool, start, end int) {
			var b strings.Builder
			for _, a := range attrs {
				fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
			}
			if unary {
				b.WriteString(" /")
			}
			line(start, end, "start <%s%s>", tag, b.String())
		},
		EndTag: func(tag string, start, end int) {
			line(start, end, "end   </%s>", tag)
		},
		Text: func(text string, start, end int) {
			line(start, end, "text  %q", text)
		},
		Comment: func(text string, start, end int) {
			line(start, end, "comment %q", text)
		},
		Warn: func(warn vhtml.Warning) {
			line(warn.Range.Start, warn.Range.End, "warn  %s", warn.Msg)
		},
	})
}

func newASTCommand(o *options) *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "ast FILE",
		Short: "print the element tree of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := o.vhtmlOptions()
			if err != nil {
				return err
			}
			src, err := readTemplate(cmd, args[0])
			if err != nil {
				return err
			}

			doc, diag := vhtml.Parse(src, opts)
			for _, d := range vcompile.Diagnostics(src, diag) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%s: %s\n", args[0], d.Position, d.Message)
			}

			if render {
				if err := vhtml.Render(cmd.OutOrStdout(), doc); err != nil {
					return fmt.Errorf("render tree: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			}
			writeTree(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "write the tree back as HTML")

	return cmd
}

// writeTree prints one node per line, children indented below their parent.
func writeTree(w io.Writer, n *vhtml.Node) {
	var walk func(n *vhtml.Node, level int)
	walk = func(n *vhtml.Node, level int) {
		if n.Type != vhtml.DocumentNode {
			indent := strings.Repeat("  ", level)
			switch n.Type {
			case vhtml.ElementNode:
				var b strings.Builder
				for _, a := range n.Attr {
					b.WriteString(" ")
					if a.Dynamic {
						b.WriteString(":")
					}
					fmt.Fprintf(&b, "%s=%q", a.Name, a.Value)
				}
				if n.Unary {
					b.WriteString(" /")
				}
				fmt.Fprintf(w, "%s<%s%s>\n", indent, n.Tag, b.String())
			case vhtml.TextNode:
				fmt.Fprintf(w, "%s%q\n", indent, n.Data)
			case vhtml.ExpressionNode:
				fmt.Fprintf(w, "%s{%s}\n", indent, n.Expression)
			case vhtml.CommentNode:
				fmt.Fprintf(w, "%s<!--%s-->\n", indent, n.Data)
			}
			level++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, level)
		}
	}
	walk(n, 0)
}

func newCompileCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compile FILE",
		Short: "compile a template and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := o.vhtmlOptions()
			if err != nil {
				return err
			}
			src, err := readTemplate(cmd, args[0])
			if err != nil {
				return err
			}

			c := &vcompile.Compiler{
				Options:   opts,
				Optimizer: vcompile.MarkStatic,
				Logger:    o.logger(cmd.ErrOrStderr()),
			}
			res, err := c.Compile(src)
			if err != nil {
				return err
			}

			resp := &vcompile.Response{Result: res, Diagnostics: res.Diagnostics()}
			var buf strings.Builder
			if err := vhtml.Render(&buf, res.AST); err != nil {
				return fmt.Errorf("render tree: %w", err)
			}
			resp.HTML = buf.String()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}

// LoggerMiddleware logs every request before passing it to next.
func LoggerMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("HTTP request", "method", r.Method, "url", r.URL)
		next.ServeHTTP(w, r)
	})
}

func newServeCommand(o *options) *cobra.Command {
	var dir, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the compilation results of a template directory over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := o.vhtmlOptions()
			if err != nil {
				return err
			}
			logger := o.logger(cmd.ErrOrStderr())

			h := &vcompile.Handler{
				FileSystem: os.DirFS(dir),
				Compiler: &vcompile.Compiler{
					Options:   opts,
					Optimizer: vcompile.MarkStatic,
					Logger:    logger,
				},
				Logger: logger,
			}

			return serve(cmd.Context(), addr, LoggerMiddleware(h, logger), logger)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory with "+vcompile.TemplateExt+" templates")
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "address to listen on")

	return cmd
}

// serve runs an HTTP server until ctx is canceled.
func serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
