package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/abelbrown/flashpoint/internal/config"
	"github.com/abelbrown/flashpoint/internal/revision"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// stubSource serves canned revision histories keyed by page title.
type stubSource struct {
	pages map[string][]revision.Revision
	errs  map[string]error
}

func (s *stubSource) FetchRevisions(_ context.Context, title string, _ int) ([]revision.Revision, error) {
	if err, ok := s.errs[title]; ok {
		return nil, err
	}
	revs, ok := s.pages[title]
	if !ok {
		return nil, fmt.Errorf("page %q does not exist", title)
	}
	return revs, nil
}

// warHistory builds a history with a burst of keyword reverts at the
// given minute offsets, preceded by an initial edit.
func warHistory(editors []string, revertMinutes ...int) []revision.Revision {
	revs := []revision.Revision{
		{ID: 1, Timestamp: t0.Add(-time.Hour), Editor: "creator", Comment: "create page"},
	}
	for i, m := range revertMinutes {
		revs = append(revs, revision.Revision{
			ID:        int64(i + 2),
			Timestamp: t0.Add(time.Duration(m) * time.Minute),
			Editor:    editors[i%len(editors)],
			Comment:   "revert",
		})
	}
	return revs
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Fetch.Concurrency = 2
	cfg.Fetch.RevisionLimit = 100
	return cfg
}

func TestRunEmptyPageZeroResult(t *testing.T) {
	src := &stubSource{pages: map[string][]revision.Revision{"Empty": nil}}
	a := New(src, testConfig())

	report, err := a.Run(context.Background(), []string{"Empty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Results))
	}

	res := report.Results[0]
	if res.Score.Value != 0 {
		t.Errorf("empty page must score 0, got %f", res.Score.Value)
	}
	if len(res.Wars) != 0 || len(res.Violations) != 0 {
		t.Errorf("empty page must have no wars or violations: %+v", res)
	}
}

func TestRunDetectsWarAndViolations(t *testing.T) {
	src := &stubSource{pages: map[string][]revision.Revision{
		// Bot1 reverts 5 times inside 2 hours: one war, >=2 violations.
		"Hot": warHistory([]string{"Bot1"}, 0, 30, 60, 90, 120),
	}}
	a := New(src, testConfig())

	report, err := a.Run(context.Background(), []string{"Hot"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := report.Results[0]
	if len(res.Wars) != 1 {
		t.Fatalf("expected 1 edit war, got %d", len(res.Wars))
	}
	if len(res.Wars[0].Reverts) != 5 {
		t.Errorf("expected war of 5 reverts, got %d", len(res.Wars[0].Reverts))
	}
	if len(res.Violations) < 2 {
		t.Errorf("expected violations at 4th and 5th revert, got %d", len(res.Violations))
	}
	if res.BotEditors != 1 {
		t.Errorf("Bot1 should be tagged as a bot editor, got %d", res.BotEditors)
	}
	if res.Score.Value <= 0 {
		t.Errorf("contested page must score above 0, got %f", res.Score.Value)
	}
}

func TestRunSkipsFailedPagesAndContinues(t *testing.T) {
	src := &stubSource{
		pages: map[string][]revision.Revision{
			"Good": warHistory([]string{"alice", "bob"}, 0, 10, 20),
			"Dup": {
				{ID: 5, Timestamp: t0, Editor: "alice"},
				{ID: 5, Timestamp: t0.Add(time.Minute), Editor: "bob"},
			},
		},
		errs: map[string]error{"Gone": fmt.Errorf("fetch failed: HTTP 503")},
	}
	a := New(src, testConfig())

	report, err := a.Run(context.Background(), []string{"Gone", "Good", "Dup"})
	if err != nil {
		t.Fatalf("batch must not abort on page failures: %v", err)
	}

	if len(report.Results) != 1 || report.Results[0].Page != "Good" {
		t.Errorf("expected only Good analyzed, got %+v", report.Results)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("expected 2 skipped pages, got %d", len(report.Skipped))
	}
	// Skips sorted by page title
	if report.Skipped[0].Page != "Dup" || report.Skipped[1].Page != "Gone" {
		t.Errorf("unexpected skip order: %+v", report.Skipped)
	}
	if report.Summary.PagesAnalyzed != 1 || report.Summary.PagesSkipped != 2 {
		t.Errorf("summary counts wrong: %+v", report.Summary)
	}
}

func TestRunRankingDeterministic(t *testing.T) {
	src := &stubSource{pages: map[string][]revision.Revision{
		"Calm":    {{ID: 1, Timestamp: t0, Editor: "alice", Comment: "expand"}},
		"Busy":    warHistory([]string{"alice", "bob", "carol"}, 0, 10, 20, 30, 40, 50),
		"Busier":  warHistory([]string{"alice", "bob", "carol", "dave"}, 0, 5, 10, 15, 20, 25, 30, 35),
	}}
	a := New(src, testConfig())

	pages := []string{"Calm", "Busy", "Busier"}
	first, err := a.Run(context.Background(), pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Run(context.Background(), pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Results[len(first.Results)-1].Page != "Calm" {
		t.Errorf("calm page should rank last, got %q", first.Results[len(first.Results)-1].Page)
	}
	for i := range first.Results {
		if first.Results[i].Page != second.Results[i].Page {
			t.Errorf("rank order differs between runs at %d: %q vs %q",
				i, first.Results[i].Page, second.Results[i].Page)
		}
		if first.Results[i].Score.Value != second.Results[i].Score.Value {
			t.Errorf("score differs between runs for %q", first.Results[i].Page)
		}
	}
}

func TestRunCorpusWideParticipation(t *testing.T) {
	src := &stubSource{pages: map[string][]revision.Revision{
		"PageA": warHistory([]string{"alice", "bob", "alice"}, 0, 10, 20),
		"PageB": warHistory([]string{"alice", "carol", "alice"}, 0, 10, 20),
	}}
	a := New(src, testConfig())

	report, err := a.Run(context.Background(), []string{"PageA", "PageB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := report.Summary.Participation
	if p.TotalWars != 2 {
		t.Fatalf("expected 2 wars, got %d", p.TotalWars)
	}
	// alice fought in both wars: repeat. bob and carol once each: new.
	if p.RepeatEditors != 1 || p.NewEditors != 2 {
		t.Errorf("expected 1 repeat / 2 new, got %d / %d", p.RepeatEditors, p.NewEditors)
	}
	if p.NewEditors+p.RepeatEditors != p.UniqueEditors {
		t.Errorf("new+repeat must partition the editor set")
	}
}

func TestRunFailsFastOnBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.WindowMinutes = -1

	src := &stubSource{pages: map[string][]revision.Revision{}}
	a := New(src, cfg)

	if _, err := a.Run(context.Background(), []string{"Any"}); err == nil {
		t.Fatal("expected configuration error before processing pages")
	}
}
