// Package main is the entry point for the linkguard command.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dshills/linkguard/internal/config"
	"github.com/dshills/linkguard/internal/dispatcher"
	"github.com/dshills/linkguard/internal/dispatcher/handler"
	"github.com/dshills/linkguard/internal/dispatcher/hook"
	"github.com/dshills/linkguard/internal/document"
	"github.com/dshills/linkguard/internal/engine"
	"github.com/dshills/linkguard/internal/watcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage marks invalid invocations; run prints the usage and exits 2.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the global flags.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	write      bool
}

// app carries what every subcommand needs.
type app struct {
	opts   options
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("linkguard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")
	fs.BoolVar(&opts.write, "write", false, "Write the result back to the document file")
	fs.BoolVar(&opts.write, "w", false, "Write the result back (shorthand)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "linkguard %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	overrides := make(map[string]any)
	if opts.logLevel != "" {
		overrides["logging.level"] = opts.logLevel
	}
	if opts.logFormat != "" {
		overrides["logging.format"] = opts.logFormat
	}
	cfg, err := config.Load(opts.configPath, config.WithOverrides(overrides))
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading configuration: %v\n", err)
		return 1
	}

	a := &app{
		opts:   opts,
		cfg:    cfg,
		logger: cfg.Logging.NewLogger(stderr),
		stdout: stdout,
		stderr: stderr,
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "check":
		err = a.check(cmdArgs)
	case "watch":
		err = a.watch(cmdArgs)
	case "apply":
		err = a.apply(cmdArgs)
	case "paste":
		err = a.paste(cmdArgs)
	case "config":
		err = cfg.WriteYAML(stdout)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "linkguard - keep links from nesting inside other links\n\n")
	fmt.Fprintf(w, "Usage: linkguard [options] <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  check <doc.yaml>                                repair nested links\n")
	fmt.Fprintf(w, "  watch <doc.yaml>                                repair on every save\n")
	fmt.Fprintf(w, "  apply <doc.yaml> <cmd> <start> <end> <value> [k=v...]  run a link command\n")
	fmt.Fprintf(w, "  paste <doc.yaml> <offset> <fragment.yaml>       paste a fragment\n")
	fmt.Fprintf(w, "  config                                          print the effective configuration\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
}

// newEngine builds the engine with warnings printed to stderr.
func (a *app) newEngine() (*engine.Engine, error) {
	return engine.New(a.cfg,
		engine.WithLogger(a.logger),
		engine.WithWarner(engine.WarnerFunc(func(msg string) {
			fmt.Fprintf(a.stderr, "warning: %s\n", msg)
		})),
	)
}

// loadDocument reads a YAML document with the engine's document options.
func (a *app) loadDocument(eng *engine.Engine, path string) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return document.Decode(f, eng.DocumentOptions()...)
}

// output writes doc to stdout, or back to path with -write.
func (a *app) output(doc *document.Document, path string) error {
	if !a.opts.write {
		return document.Encode(a.stdout, doc)
	}
	var buf bytes.Buffer
	if err := document.Encode(&buf, doc); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (a *app) check(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: check takes one document", errUsage)
	}
	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	_, err = a.checkOnce(eng, args[0], true)
	return err
}

// checkOnce loads, repairs and outputs the document. When always is false
// the output is skipped for documents that needed no repair.
func (a *app) checkOnce(eng *engine.Engine, path string, always bool) (bool, error) {
	doc, err := a.loadDocument(eng, path)
	if err != nil {
		return false, err
	}
	tx, err := eng.Attach(doc, nil).Check()
	if err != nil {
		return false, err
	}
	changed := len(tx.Records) > 0
	a.logger.Info("document checked",
		"path", path,
		"transaction", tx.ID.String(),
		"corrections", len(tx.Records),
	)
	if !changed && !always {
		return false, nil
	}
	return changed, a.output(doc, path)
}

func (a *app) watch(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: watch takes one document", errUsage)
	}
	path := args[0]
	eng, err := a.newEngine()
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.WithLogger(a.logger), watcher.WithDebounce(200*time.Millisecond))
	if err != nil {
		return err
	}
	defer w.Close()

	recheck := make(chan struct{}, 1)
	w.OnChange(func(e watcher.Event) {
		if e.Op == watcher.OpRemove {
			a.logger.Warn("document removed", "path", e.Path)
			return
		}
		select {
		case recheck <- struct{}{}:
		default:
		}
	})
	if err := w.Watch(path); err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	if _, err := a.checkOnce(eng, path, true); err != nil {
		return err
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	a.logger.Info("watching document", "path", path)
	for {
		select {
		case <-signals:
			return nil
		case <-recheck:
			// Repairs are written back only when something changed, so our
			// own write settles after one more event.
			if _, err := a.checkOnce(eng, path, false); err != nil {
				a.logger.Error("check failed", "path", path, "error", err)
			}
		}
	}
}

// newDispatcher registers one attribute handler per link command plus the
// audit and timing hooks.
func (a *app) newDispatcher(eng *engine.Engine) *dispatcher.Dispatcher {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics(), dispatcher.WithLogger(a.logger))
	for _, name := range eng.Commands().Names() {
		key, _ := eng.Commands().Resolve(name)
		d.RegisterHandler(name, handler.NewAttributeHandler(name, key))
	}
	d.Hooks().Register(hook.NewAuditHook(a.logger))
	d.Hooks().Register(hook.NewTimingHook(func(command string, duration time.Duration) {
		a.logger.Debug("command timing", "command", command, "duration", duration)
	}))
	return d
}

func (a *app) apply(args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("%w: apply takes <doc> <command> <start> <end> <value> [key=value...]", errUsage)
	}
	path, name, value := args[0], args[1], args[4]
	start, err := parseOffset(args[2])
	if err != nil {
		return err
	}
	end, err := parseOffset(args[3])
	if err != nil {
		return err
	}
	cmdOpts, err := parseOptions(args[5:])
	if err != nil {
		return err
	}

	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	if _, ok := eng.Commands().Resolve(name); !ok {
		return fmt.Errorf("unknown link command %q (known: %s)", name, strings.Join(eng.Commands().Names(), ", "))
	}
	doc, err := a.loadDocument(eng, path)
	if err != nil {
		return err
	}
	d := a.newDispatcher(eng)
	if _, err := eng.Attach(doc, d).Check(); err != nil {
		return err
	}

	if err := doc.Select(document.NewSelection(start, end), document.OriginHost); err != nil {
		return err
	}
	result := d.Execute(handler.Command{Name: name, Value: value, Options: cmdOpts})
	snap := d.Metrics().Snapshot()
	a.logger.Debug("dispatch finished",
		"dispatches", snap.TotalDispatches,
		"cancelled", snap.TotalCancelled,
		"duration", snap.TotalDuration,
		"warnings", eng.Stats().Warnings,
	)
	if result.IsError() {
		return result.Error
	}
	msg := result.Message
	if msg == "" {
		msg = "-"
	}
	fmt.Fprintf(a.stderr, "%s: %s (%s)\n", name, result.Status, msg)
	return a.output(doc, path)
}

func (a *app) paste(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: paste takes <doc> <offset> <fragment.yaml>", errUsage)
	}
	at, err := parseOffset(args[1])
	if err != nil {
		return err
	}
	f, err := os.Open(args[2])
	if err != nil {
		return err
	}
	defer f.Close()
	frag, err := document.DecodeFragment(f)
	if err != nil {
		return err
	}

	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	doc, err := a.loadDocument(eng, args[0])
	if err != nil {
		return err
	}
	if _, err := eng.Attach(doc, nil).Check(); err != nil {
		return err
	}
	if _, err := doc.Paste(at, frag); err != nil {
		return err
	}
	return a.output(doc, args[0])
}

func parseOffset(s string) (document.Offset, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid offset %q", errUsage, s)
	}
	return n, nil
}

// parseOptions turns key=value arguments into command options.
func parseOptions(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: option %q is not key=value", errUsage, arg)
		}
		out[k] = v
	}
	return out, nil
}
