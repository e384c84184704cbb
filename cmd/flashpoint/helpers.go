package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/abelbrown/flashpoint/internal/config"
	"github.com/abelbrown/flashpoint/internal/events"
	"github.com/abelbrown/flashpoint/internal/store"
)

// dataDir returns ~/.flashpoint/, creating it if needed.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("failed to get home directory: %v", err)
	}
	dir := filepath.Join(home, ".flashpoint")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// dbPath returns the path to flashpoint.db.
func dbPath() string {
	return filepath.Join(dataDir(), "flashpoint.db")
}

// eventLogPath returns the path to flashpoint.events.jsonl.
func eventLogPath() string {
	return filepath.Join(dataDir(), "flashpoint.events.jsonl")
}

// openEvents opens the append-only event log. Falls back to a null
// logger if the file cannot be opened so a broken log never blocks a run.
func openEvents() *events.Logger {
	f, err := os.OpenFile(eventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashpoint: event log unavailable: %v\n", err)
		return events.NewNullLogger()
	}
	return events.NewLogger(f)
}

// openDB opens the store at path, defaulting to ~/.flashpoint/flashpoint.db.
// Fatals on failure.
func openDB(path string) *store.Store {
	if path == "" {
		path = dbPath()
	}
	st, err := store.Open(path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// loadConfig loads ~/.flashpoint/config.json or fatals.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// splitPages parses a comma-separated page list, trimming whitespace.
func splitPages(s string) []string {
	var pages []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			pages = append(pages, p)
		}
	}
	return pages
}

// readPagesFile reads one page title per line, skipping blanks and # comments.
func readPagesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pages file: %w", err)
	}
	var pages []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pages = append(pages, line)
	}
	return pages, nil
}
