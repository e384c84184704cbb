// Command flashpoint analyzes Wikipedia revision histories for edit wars.
//
// Usage:
//
//	flashpoint                    Show help
//	flashpoint analyze <pages>    Full analysis of named pages
//	flashpoint quick [flags]      Quick scan of random pages
//	flashpoint stats              Stored analysis statistics
//	flashpoint ui                 Interactive results browser
//	flashpoint events             JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `flashpoint — Wikipedia edit war analyzer

Usage:
  flashpoint <command> [flags]

Commands:
  analyze     Full analysis of named pages (reverts, wars, 3RR, scores)
  quick       Quick scan of random pages with one-line results
  stats       Statistics over previously analyzed pages
  ui          Interactive results browser
  events      JSONL event log viewer

Configuration:
  ~/.flashpoint/config.json     Analysis parameters and score weights
  ~/.flashpoint/flashpoint.db   Analysis results

Run 'flashpoint <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "analyze":
		runAnalyze()
	case "quick":
		runQuick()
	case "stats":
		runStats()
	case "ui":
		runUI()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "flashpoint: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
