package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abelbrown/flashpoint/internal/ui"
)

func runUI() {
	fs := flag.NewFlagSet("ui", flag.ExitOnError)
	dbFlag := fs.String("db", "", "Database path (default ~/.flashpoint/flashpoint.db)")
	fs.Parse(os.Args[1:])

	st := openDB(*dbFlag)
	defer st.Close()

	if err := ui.Run(st); err != nil {
		fmt.Fprintf(os.Stderr, "flashpoint: ui: %v\n", err)
		os.Exit(1)
	}
}
