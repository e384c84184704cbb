package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abelbrown/flashpoint/internal/logging"
	"github.com/abelbrown/flashpoint/internal/pipeline"
	"github.com/abelbrown/flashpoint/internal/report"
	"github.com/abelbrown/flashpoint/internal/wiki"
)

func runQuick() {
	fs := flag.NewFlagSet("quick", flag.ExitOnError)
	count := fs.Int("n", 20, "Number of random pages to scan")
	pagesFlag := fs.String("pages", "", "Comma-separated page titles (instead of random)")
	limit := fs.Int("limit", 200, "Max revisions fetched per page")
	lang := fs.String("lang", "", "Wikipedia language code (overrides config)")
	dbFlag := fs.String("db", "", "Database path (default ~/.flashpoint/flashpoint.db)")
	save := fs.Bool("save", false, "Persist results to the database")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	cfg.Fetch.RevisionLimit = *limit
	if *lang != "" {
		cfg.Fetch.Language = *lang
	}

	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "flashpoint: init logging: %v\n", err)
	}
	defer logging.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := wiki.NewClient(cfg.Fetch.Language, cfg.Fetch.RequestsPerSecond)
	if cfg.Fetch.UserAgent != "" {
		client.SetUserAgent(cfg.Fetch.UserAgent)
	}

	pages := splitPages(*pagesFlag)
	if len(pages) == 0 {
		var err error
		pages, err = client.RandomPages(ctx, *count)
		if err != nil {
			fmt.Fprintf(os.Stderr, "flashpoint: fetch random pages: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Scanning %d pages...\n\n", len(pages))

	analyzer := pipeline.New(client, cfg)
	rep, err := analyzer.Run(ctx, pages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashpoint: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(report.RenderQuick(rep))
	fmt.Printf("\n%d pages · %d reverts · %d wars · %d violations\n",
		rep.Summary.PagesAnalyzed, rep.Summary.TotalReverts,
		rep.Summary.TotalWars, rep.Summary.TotalViolations)

	if *save {
		st := openDB(*dbFlag)
		defer st.Close()
		if err := st.SaveReport(rep); err != nil {
			fmt.Fprintf(os.Stderr, "flashpoint: save results: %v\n", err)
			os.Exit(1)
		}
	}
}
