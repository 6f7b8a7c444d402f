package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"easyfilter/pkg/app"
	"easyfilter/pkg/catalog"
	"easyfilter/pkg/concurrency"
	"easyfilter/pkg/config"
	"easyfilter/pkg/decode"
	"easyfilter/pkg/hardware"
	"easyfilter/pkg/history"
	"easyfilter/pkg/kvstore"
	"easyfilter/pkg/label"
	"easyfilter/pkg/log"
	"easyfilter/pkg/metrics"
	"easyfilter/pkg/render"
)

type command struct {
	usage string
	run   func(ctx context.Context, cfg *config.Config) error
}

var commands = map[string]command{
	"lookup":  {"lookup [-list] <barcode>...   classify barcodes", runLookup},
	"scan":    {"scan [flags] [frames...]      scan one barcode from the camera or files", runScan},
	"history": {"history [n|barcode]           show recent scans, or the result for one", runHistory},
	"label":   {"label [flags] <barcode>...    write PDF labels", runLabel},
	"tui":     {"tui [flags]                   interactive scanner", runTUI},
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: easyfilter <command> [flags] [args]")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(os.Stderr, "  "+commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "Run 'easyfilter <command> -h' for the flags.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		usage()
		os.Exit(2)
	}

	cfg, err := config.NewConfig(name, os.Args[2:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("Invalid arguments: %v", err)
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		log.Configure(log.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: f})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.run(ctx, cfg); err != nil {
		stop()
		log.Fatalf("%s failed: %v", name, err)
	}
}

// Scanner holds everything one scanner instance needs.
type Scanner struct {
	config  *config.Config
	metrics *metrics.Recorder
	store   kvstore.Store
	history *history.Store
	app     *app.App
}

// ui receives the scanner's output.
type ui struct {
	notifier  app.Notifier
	display   app.Display
	renderer  history.Renderer
	clipboard app.Clipboard
}

// NewScanner opens the history backend, loads the history and connects the
// camera and decoder selected by cfg.
func NewScanner(ctx context.Context, cfg *config.Config, out ui) (*Scanner, error) {
	log.Debug("Initializing history store, camera and decoder")
	s := &Scanner{config: cfg, metrics: metrics.NewRecorder(false)}

	if cfg.Store == config.StoreFile {
		if _, err := config.EnsureDirectory(cfg.StorePath); err != nil {
			return nil, err
		}
	}
	var err error
	s.store, err = kvstore.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []history.Option{
		history.WithKey(cfg.HistoryKey),
		history.WithLimit(cfg.HistoryLimit),
		history.WithLocation(cfg.Location()),
	}
	if out.renderer != nil {
		opts = append(opts, history.WithRenderer(out.renderer))
	}
	s.history = history.New(s.store, opts...)
	s.history.Load(ctx)

	camera, err := hardware.New(cfg)
	if err != nil {
		s.store.Close()
		return nil, err
	}
	if cfg.HardwareType == config.HWPeripheral {
		if _, err := config.EnsureDirectory(cfg.PicturePath); err != nil {
			s.store.Close()
			return nil, err
		}
	}

	s.app = app.New(app.Deps{
		History:       s.history,
		Camera:        camera,
		Decoder:       decode.NewZXing(cfg.TryHarder),
		Notifier:      out.notifier,
		Display:       out.display,
		Clipboard:     out.clipboard,
		Recorder:      s.metrics,
		FrameInterval: cfg.FrameInterval,
	})
	return s, nil
}

// Close releases the history backend and prints the metrics if asked to.
func (s *Scanner) Close() {
	if s.config.PrintMetrics {
		s.metrics.PrintSummary(os.Stdout)
	}
	if err := s.store.Close(); err != nil {
		log.Warn("Closing history store: %v", err)
	}
}

func printResult(res *catalog.Classification) {
	if err := render.Write(os.Stdout, render.Lines(res)); err != nil {
		log.Error("Writing result: %v", err)
	}
}

// stderrNotifier prints messages for the non-interactive commands.
var stderrNotifier = app.NotifierFunc(func(m app.Message) {
	if m.Level == app.LevelError {
		fmt.Fprintln(os.Stderr, "[!] "+m.Text)
		return
	}
	fmt.Fprintln(os.Stderr, m.Text)
})

func runLookup(_ context.Context, cfg *config.Config) error {
	if cfg.List {
		return listKnown(os.Stdout)
	}
	if len(cfg.Args) == 0 {
		return errors.New("no barcode given")
	}
	for i, raw := range cfg.Args {
		if i > 0 {
			fmt.Println()
		}
		res, err := catalog.Classify(raw)
		if err != nil {
			return fmt.Errorf("%q: %w", raw, err)
		}
		printResult(res)
	}
	return nil
}

// listKnown prints every catalogued barcode with all of its part numbers.
func listKnown(w io.Writer) error {
	for _, code := range catalog.Default.Codes() {
		rec, _ := catalog.Default.Lookup(code)
		parts := make([]string, len(rec.Variants))
		for i, v := range rec.Variants {
			parts[i] = v.PartNumber
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", code, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func runScan(ctx context.Context, cfg *config.Config) error {
	s, err := NewScanner(ctx, cfg, ui{notifier: stderrNotifier})
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.app.Scan(ctx)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config) error {
	s, err := NewScanner(ctx, cfg, ui{notifier: stderrNotifier})
	if err != nil {
		return err
	}
	defer s.Close()

	records := s.app.History()
	if len(cfg.Args) == 0 {
		return render.Write(os.Stdout, render.HistoryLines(records))
	}

	barcode := cfg.Args[0]
	if n, err := strconv.Atoi(barcode); err == nil && n >= 1 && n <= len(records) {
		barcode = records[n-1].Barcode
	}
	res, err := s.app.SelectRecent(barcode)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func runLabel(_ context.Context, cfg *config.Config) error {
	if len(cfg.Args) == 0 {
		return errors.New("no barcode given")
	}
	dir, err := config.EnsureDirectory(cfg.LabelPath)
	if err != nil {
		return err
	}
	results := make([]*catalog.Classification, len(cfg.Args))
	for i, raw := range cfg.Args {
		if results[i], err = catalog.Classify(raw); err != nil {
			return fmt.Errorf("%q: %w", raw, err)
		}
	}

	rec := metrics.NewRecorder(false)
	w := label.NewWriter(cfg.LabelFont, rec)
	paths, err := concurrency.Map(cfg.Cores, results, func(res *catalog.Classification) (string, error) {
		path := filepath.Join(dir, "label_"+res.Barcode+".pdf")
		return path, w.WriteFile(path, res)
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	if cfg.PrintMetrics {
		rec.PrintSummary(os.Stdout)
	}
	return nil
}
