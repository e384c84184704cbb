// Package pipeline wires the analysis stages together and fans out
// across pages.
//
// Each page runs the same strictly sequential chain: validated history,
// revert detection, edit war grouping, rule violations, scoring. Pages
// are independent, so the pipeline runs them concurrently under a
// bounded errgroup. Corpus-level aggregation is a final reduction over
// completed per-page results, processed in deterministic order.
package pipeline

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/flashpoint/internal/config"
	"github.com/abelbrown/flashpoint/internal/logging"
	"github.com/abelbrown/flashpoint/internal/participation"
	"github.com/abelbrown/flashpoint/internal/revert"
	"github.com/abelbrown/flashpoint/internal/revision"
	"github.com/abelbrown/flashpoint/internal/rules"
	"github.com/abelbrown/flashpoint/internal/scoring"
	"github.com/abelbrown/flashpoint/internal/war"
)

// Source supplies raw revision records for a page. Implemented by
// wiki.Client; tests inject stubs.
type Source interface {
	FetchRevisions(ctx context.Context, title string, limit int) ([]revision.Revision, error)
}

// PageResult is the structured analysis output for one page — the sole
// contract with reporting and persistence code.
type PageResult struct {
	Page          string
	TotalEdits    int
	Reverts       []revert.Revert
	Wars          []war.EditWar
	Violations    []rules.Violation
	Score         scoring.Score
	UniqueEditors int
	BotEditors    int
	AnalyzedAt    time.Time
}

// RevertRate returns reverts over total edits, 0 for an empty page.
func (r *PageResult) RevertRate() float64 {
	if r.TotalEdits == 0 {
		return 0
	}
	return float64(len(r.Reverts)) / float64(r.TotalEdits)
}

// SkippedPage records a page excluded from the run: fetch failure or
// structurally invalid history. Never aborts the batch.
type SkippedPage struct {
	Page   string
	Reason string
}

// Summary is the corpus-level rollup across all analyzed pages.
type Summary struct {
	PagesAnalyzed   int
	PagesSkipped    int
	PagesWithWars   int
	TotalReverts    int
	TotalWars       int
	TotalViolations int
	AvgReverts      float64 // per analyzed page
	Participation   participation.Summary
}

// Report is the full output of one analysis run.
type Report struct {
	GeneratedAt time.Time
	Parameters  config.AnalysisConfig
	Weights     config.ScoreWeights

	// Results are ranked by controversy score descending (ties by
	// revert count, then page title).
	Results []PageResult
	Skipped []SkippedPage
	Summary Summary
}

// Analyzer runs the full pipeline.
type Analyzer struct {
	source      Source
	cfg         *config.Config
	detector    *revert.Detector
	grouper     *war.Grouper
	ruleChecker *rules.Detector
	scorer      *scoring.Composite
}

// New creates an Analyzer. The configuration must already be validated;
// Run revalidates and fails fast before touching any page.
func New(source Source, cfg *config.Config) *Analyzer {
	return &Analyzer{
		source:   source,
		cfg:      cfg,
		detector: revert.NewDetector(),
		grouper: war.NewGrouper(
			time.Duration(cfg.Analysis.WindowMinutes)*time.Minute,
			cfg.Analysis.MinRevertThreshold,
		),
		ruleChecker: rules.NewDetector(
			time.Duration(cfg.Analysis.RuleViolationWindowHours)*time.Hour,
			cfg.Analysis.RuleViolationMaxReverts,
		),
		scorer: scoring.Default(
			cfg.Weights.RevertRate,
			cfg.Weights.EditWars,
			cfg.Weights.EditorDiversity,
		),
	}
}

// AnalyzeHistory runs the in-memory stages over a validated history.
// Pure and deterministic: no I/O, same input always yields the same
// result.
func (a *Analyzer) AnalyzeHistory(h *revision.History) PageResult {
	reverts := a.detector.Detect(h)
	wars := a.grouper.Group(h.Page(), reverts)
	violations := a.ruleChecker.Detect(h.Page(), reverts)

	editors := h.Editors()
	bots := 0
	seenBots := make(map[string]bool)
	for i := 0; i < h.Len(); i++ {
		r := h.At(i)
		if r.IsBot() && !seenBots[r.Editor] {
			seenBots[r.Editor] = true
			bots++
		}
	}

	score := a.scorer.Score(scoring.PageStats{
		Page:          h.Page(),
		TotalEdits:    h.Len(),
		Reverts:       len(reverts),
		EditWars:      len(wars),
		UniqueEditors: len(editors),
	})

	return PageResult{
		Page:          h.Page(),
		TotalEdits:    h.Len(),
		Reverts:       reverts,
		Wars:          wars,
		Violations:    violations,
		Score:         score,
		UniqueEditors: len(editors),
		BotEditors:    bots,
		AnalyzedAt:    time.Now().UTC(),
	}
}

// AnalyzePage fetches one page's history and analyzes it.
func (a *Analyzer) AnalyzePage(ctx context.Context, title string) (PageResult, error) {
	raw, err := a.source.FetchRevisions(ctx, title, a.cfg.Fetch.RevisionLimit)
	if err != nil {
		return PageResult{}, err
	}

	h, err := revision.NewHistory(title, raw)
	if err != nil {
		return PageResult{}, err
	}

	return a.AnalyzeHistory(h), nil
}

// Run analyzes all pages concurrently (bounded by the configured
// concurrency limit) and reduces the results into a Report. A failing
// page is recorded as skipped, never fatal. Output ordering is fully
// deterministic regardless of completion order.
func (a *Analyzer) Run(ctx context.Context, pages []string) (*Report, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]*PageResult, len(pages))
	skips := make([]*SkippedPage, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Fetch.Concurrency)

	for i, page := range pages {
		g.Go(func() error {
			res, err := a.AnalyzePage(gctx, page)
			if err != nil {
				logging.Warn("Page skipped", "page", page, "error", err)
				skips[i] = &SkippedPage{Page: page, Reason: err.Error()}
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a.reduce(pages, results, skips), nil
}

// reduce performs the corpus-level aggregation over completed pages.
func (a *Analyzer) reduce(pages []string, results []*PageResult, skips []*SkippedPage) *Report {
	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Parameters:  a.cfg.Analysis,
		Weights:     a.cfg.Weights,
	}

	var allWars []war.EditWar
	for i := range pages {
		if skips[i] != nil {
			report.Skipped = append(report.Skipped, *skips[i])
			continue
		}
		res := *results[i]
		report.Results = append(report.Results, res)

		report.Summary.TotalReverts += len(res.Reverts)
		report.Summary.TotalWars += len(res.Wars)
		report.Summary.TotalViolations += len(res.Violations)
		if len(res.Wars) > 0 {
			report.Summary.PagesWithWars++
		}
		allWars = append(allWars, res.Wars...)
	}

	report.Summary.PagesAnalyzed = len(report.Results)
	report.Summary.PagesSkipped = len(report.Skipped)
	if report.Summary.PagesAnalyzed > 0 {
		report.Summary.AvgReverts = float64(report.Summary.TotalReverts) / float64(report.Summary.PagesAnalyzed)
	}

	// Corpus-wide participation is a reduction over wars sorted by
	// (page, start) so the summary is reproducible.
	sort.Slice(allWars, func(i, j int) bool {
		if allWars[i].Page != allWars[j].Page {
			return allWars[i].Page < allWars[j].Page
		}
		return allWars[i].Start.Before(allWars[j].Start)
	})
	report.Summary.Participation = participation.Aggregate(allWars)

	// Rank pages: score desc, reverts desc, title asc.
	sort.Slice(report.Results, func(i, j int) bool {
		si, sj := report.Results[i].Score, report.Results[j].Score
		if si.Value != sj.Value {
			return si.Value > sj.Value
		}
		if si.Reverts != sj.Reverts {
			return si.Reverts > sj.Reverts
		}
		return report.Results[i].Page < report.Results[j].Page
	})
	sort.Slice(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].Page < report.Skipped[j].Page
	})

	logging.Info("Analysis complete",
		"analyzed", report.Summary.PagesAnalyzed,
		"skipped", report.Summary.PagesSkipped,
		"wars", report.Summary.TotalWars,
		"violations", report.Summary.TotalViolations)

	return report
}
