package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abelbrown/flashpoint/internal/events"
	"github.com/abelbrown/flashpoint/internal/logging"
	"github.com/abelbrown/flashpoint/internal/pipeline"
	"github.com/abelbrown/flashpoint/internal/report"
	"github.com/abelbrown/flashpoint/internal/wiki"
)

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	pagesFlag := fs.String("pages", "", "Comma-separated page titles (overrides config)")
	fileFlag := fs.String("file", "", "File with one page title per line")
	window := fs.Int("window", 0, "Revert clustering window in minutes (overrides config)")
	minReverts := fs.Int("min-reverts", 0, "Minimum reverts per edit war (overrides config)")
	limit := fs.Int("limit", 0, "Max revisions fetched per page (overrides config)")
	lang := fs.String("lang", "", "Wikipedia language code (overrides config)")
	random := fs.Int("random", 0, "Also analyze N random pages")
	jsonOut := fs.String("json", "", "Write full report as JSON to this path")
	dbFlag := fs.String("db", "", "Database path (default ~/.flashpoint/flashpoint.db)")
	noSave := fs.Bool("no-save", false, "Do not persist results to the database")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	if *window > 0 {
		cfg.Analysis.WindowMinutes = *window
	}
	if *minReverts > 0 {
		cfg.Analysis.MinRevertThreshold = *minReverts
	}
	if *limit > 0 {
		cfg.Fetch.RevisionLimit = *limit
	}
	if *lang != "" {
		cfg.Fetch.Language = *lang
	}

	pages := cfg.Pages
	if *pagesFlag != "" {
		pages = splitPages(*pagesFlag)
	}
	if *fileFlag != "" {
		filePages, err := readPagesFile(*fileFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "flashpoint: %v\n", err)
			os.Exit(1)
		}
		pages = append(pages, filePages...)
	}
	if len(fs.Args()) > 0 {
		pages = append(pages, fs.Args()...)
	}
	if len(pages) == 0 && *random == 0 {
		fmt.Fprintln(os.Stderr, "flashpoint: no pages to analyze")
		fmt.Fprintln(os.Stderr, "  pass titles as arguments, -pages, -file, -random, or set pages in config")
		os.Exit(1)
	}

	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "flashpoint: init logging: %v\n", err)
	}
	defer logging.Close()

	ev := openEvents()
	defer ev.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := wiki.NewClient(cfg.Fetch.Language, cfg.Fetch.RequestsPerSecond)
	if cfg.Fetch.UserAgent != "" {
		client.SetUserAgent(cfg.Fetch.UserAgent)
	}

	if *random > 0 {
		randomPages, err := client.RandomPages(ctx, *random)
		if err != nil {
			fmt.Fprintf(os.Stderr, "flashpoint: fetch random pages: %v\n", err)
			os.Exit(1)
		}
		pages = append(pages, randomPages...)
	}

	started := time.Now()
	ev.Emit(events.Event{Level: events.LevelInfo, Kind: events.KindRunStart, Count: len(pages)})

	analyzer := pipeline.New(client, cfg)
	rep, err := analyzer.Run(ctx, pages)
	if err != nil {
		ev.Error(events.KindError, err)
		logging.Error("Analysis failed", "error", err)
		fmt.Fprintf(os.Stderr, "flashpoint: %v\n", err)
		os.Exit(1)
	}

	for _, res := range rep.Results {
		ev.Emit(events.Event{
			Level: events.LevelInfo, Kind: events.KindPageAnalyzed,
			Page: res.Page, Count: res.TotalEdits,
			Reverts: len(res.Reverts), Wars: len(res.Wars),
		})
	}
	for _, sk := range rep.Skipped {
		ev.Emit(events.Event{
			Level: events.LevelWarn, Kind: events.KindPageSkipped,
			Page: sk.Page, Msg: sk.Reason,
		})
	}
	ev.Emit(events.Event{
		Level: events.LevelInfo, Kind: events.KindRunComplete,
		Count: rep.Summary.PagesAnalyzed, Dur: time.Since(started),
	})

	fmt.Println(report.Render(rep))

	if *jsonOut != "" {
		if err := report.WriteJSON(*jsonOut, rep); err != nil {
			fmt.Fprintf(os.Stderr, "flashpoint: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s\n", *jsonOut)
	}

	if !*noSave {
		st := openDB(*dbFlag)
		defer st.Close()
		if err := st.SaveReport(rep); err != nil {
			ev.Error(events.KindStoreError, err)
			logging.Error("Failed to save report", "error", err)
			fmt.Fprintf(os.Stderr, "flashpoint: save results: %v\n", err)
			os.Exit(1)
		}
		ev.Emit(events.Event{Level: events.LevelInfo, Kind: events.KindStoreSave, Count: len(rep.Results)})
	}
}
