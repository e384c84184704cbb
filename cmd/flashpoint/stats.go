package main

import (
	"flag"
	"fmt"
	"os"
)

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	top := fs.Int("top", 10, "Number of top pages to list")
	dbFlag := fs.String("db", "", "Database path (default ~/.flashpoint/flashpoint.db)")
	fs.Parse(os.Args[1:])

	st := openDB(*dbFlag)
	defer st.Close()

	totals, err := st.Totals()
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashpoint: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Pages analyzed:    %d\n", totals.Pages)
	fmt.Printf("Total reverts:     %d\n", totals.Reverts)
	fmt.Printf("Total edit wars:   %d\n", totals.Wars)
	fmt.Printf("3RR violations:    %d\n", totals.Violations)

	if totals.Pages == 0 {
		return
	}

	pages, err := st.TopPages(*top)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashpoint: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nTop %d by controversy score:\n", len(pages))
	for i, p := range pages {
		fmt.Printf("  %2d. %-40s %.3f  (%d rv, %d wars, analyzed %s)\n",
			i+1, truncate(p.Page, 40), p.Score, p.Reverts, p.Wars,
			p.AnalyzedAt.Format("2006-01-02"))
	}
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
