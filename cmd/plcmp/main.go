package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pthm/plcmp"
	"github.com/pthm/plcmp/components/button"
	"github.com/pthm/plcmp/internal/config"
	"github.com/pthm/plcmp/lib/dom"
	"github.com/pthm/plcmp/lib/generator"
	"github.com/pthm/plcmp/lib/schema"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func run(cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "generate":
		return runGenerate(args, out)
	case "clean":
		return runClean(args, out)
	case "render":
		return runRender(args, out)
	case "schema":
		return runSchema(args, out)
	case "serve":
		return runServe()
	case "version":
		fmt.Fprintf(out, "plcmp version %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `plcmp - reactive property components for Go

Usage:
  plcmp <command> [arguments]

Commands:
  generate [packages]          Generate descriptors and accessors (*_pl.go)
  clean [packages]             Remove generated files (*_pl.go)
  render <tag> [name=value]    Render a component to stdout
  schema [tag]                 Print component schemas as YAML
  serve                        Serve the component routes over HTTP
  version                      Print version
  help                         Show this help

Options for generate:
  --dry-run                    Show what would be generated without writing files

Environment for serve:
  PLCMP_ADDR        listen address (default :8080)
  PLCMP_PREFIX      route prefix (default /_pl/)
  PLCMP_SECRET      state token key, at least 16 characters (required)
  PLCMP_LOG_LEVEL   debug, info, warn or error (default info)
  PLCMP_LOG_FORMAT  text or json (default text)

Examples:
  plcmp generate ./...
  plcmp render pl-button label=Save variant=primary disabled
  plcmp schema pl-button`)
}

// newRegistry creates a registry with the built-in components defined.
func newRegistry(key []byte, logger *slog.Logger) (*plcmp.Registry, error) {
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}
	}
	reg := plcmp.NewRegistry(key)
	reg.Logger = logger
	if err := button.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func runGenerate(args []string, out io.Writer) error {
	var dryRun bool
	var patterns []string

	for _, arg := range args {
		if arg == "--dry-run" {
			dryRun = true
		} else {
			patterns = append(patterns, arg)
		}
	}

	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	gen := generator.New(generator.Options{
		DryRun: dryRun,
		Out:    out,
	})

	return gen.Generate(patterns...)
}

func runClean(args []string, out io.Writer) error {
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	gen := generator.New(generator.Options{Out: out})
	return gen.Clean(patterns...)
}

// runRender mounts tag with name=value attributes (a bare name sets a
// boolean) and writes the rendered element.
func runRender(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: render needs a tag", errUsage)
	}
	tag := args[0]

	seed := make(map[string]string, len(args)-1)
	for _, arg := range args[1:] {
		name, value, _ := strings.Cut(arg, "=")
		seed[name] = value
	}

	reg, err := newRegistry(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	t, err := reg.Lookup(tag)
	if err != nil {
		return err
	}
	for name := range seed {
		if !t.Schema().Has(name) {
			return fmt.Errorf("%s: %w: %q", tag, plcmp.ErrUnknownProperty, name)
		}
	}

	inst, err := reg.Mount(tag, dom.NewElement(tag), seed)
	if err != nil {
		return err
	}
	defer inst.Detach()

	if err := inst.Render().Render(context.Background(), out); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}

// runSchema prints the schema of one tag, or of every registered tag.
func runSchema(args []string, out io.Writer) error {
	reg, err := newRegistry(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}

	tags := args
	if len(tags) == 0 {
		tags = reg.Tags()
	}

	schemas := make(map[string]*schema.Schema, len(tags))
	for _, tag := range tags {
		t, err := reg.Lookup(tag)
		if err != nil {
			return err
		}
		schemas[tag] = t.Schema()
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(schemas); err != nil {
		return err
	}
	return enc.Close()
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	reg, err := newRegistry([]byte(cfg.Secret), logger)
	if err != nil {
		return err
	}
	reg.SetPrefix(cfg.Prefix)
	plcmp.SetDefault(reg)

	mux := http.NewServeMux()
	mux.Handle(reg.Prefix(), reg.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if err := index(w, r, reg); err != nil {
			logger.Error("render index", "err", err)
		}
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "prefix", reg.Prefix(), "components", reg.Tags())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// index renders a demo page with one button per variant.
func index(w http.ResponseWriter, r *http.Request, reg *plcmp.Registry) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>plcmp</title>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
</head>
<body>
`); err != nil {
		return err
	}

	for _, variant := range []button.Variant{button.VariantPrimary, button.VariantSecondary, button.VariantGhost, button.VariantLink} {
		b, err := button.Mount(reg, dom.NewElement(button.Tag), map[string]string{
			"label":   strings.ToUpper(string(variant[:1])) + string(variant[1:]),
			"variant": string(variant),
		})
		if err != nil {
			return err
		}
		err = b.Render().Render(r.Context(), w)
		b.Detach()
		if err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "\n</body>\n</html>\n")
	return err
}
