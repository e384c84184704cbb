// Package report renders analysis results for the terminal and as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/flashpoint/internal/pipeline"
)

// Colors used in the report.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorWarn      = lipgloss.Color("208") // Orange
	colorError     = lipgloss.Color("196") // Red
)

// Title style for the report banner.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// SectionHeader style for section labels.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1)

// Label style for stat names.
var Label = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Value style for stat values.
var Value = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// RankBadge style for the rank number of a page.
var RankBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Bold(true)

// ViolationStyle for three-revert-rule entries.
var ViolationStyle = lipgloss.NewStyle().
	Foreground(colorWarn)

// SkippedStyle for pages that could not be analyzed.
var SkippedStyle = lipgloss.NewStyle().
	Foreground(colorError)

// topPages is how many ranked pages the terminal report shows.
const topPages = 10

func statLine(label string, format string, args ...any) string {
	return fmt.Sprintf("  %s %s\n",
		Label.Render(label+":"),
		Value.Render(fmt.Sprintf(format, args...)))
}

// Render produces the full terminal report for an analysis run.
func Render(r *pipeline.Report) string {
	var b strings.Builder

	b.WriteString(Title.Render("FLASHPOINT · edit war analysis"))
	b.WriteString("\n")
	b.WriteString(Label.Render(fmt.Sprintf("  generated %s", r.GeneratedAt.Format("2006-01-02 15:04 MST"))))
	b.WriteString("\n")

	s := r.Summary

	b.WriteString(SectionHeader.Render("OVERALL"))
	b.WriteString("\n")
	b.WriteString(statLine("Pages analyzed", "%d", s.PagesAnalyzed))
	if s.PagesSkipped > 0 {
		b.WriteString(statLine("Pages skipped", "%d", s.PagesSkipped))
	}
	b.WriteString(statLine("Pages with edit wars", "%d", s.PagesWithWars))
	b.WriteString(statLine("Total reverts", "%d", s.TotalReverts))
	b.WriteString(statLine("Total edit wars", "%d", s.TotalWars))
	b.WriteString(statLine("3RR violations", "%d", s.TotalViolations))
	b.WriteString(statLine("Avg reverts per page", "%.2f", s.AvgReverts))

	b.WriteString(SectionHeader.Render("MOST CONTESTED PAGES"))
	b.WriteString("\n")
	shown := 0
	for _, res := range r.Results {
		if shown >= topPages {
			break
		}
		shown++
		b.WriteString(fmt.Sprintf("  %s %s\n",
			RankBadge.Render(fmt.Sprintf("%2d.", shown)),
			Value.Render(res.Page)))
		b.WriteString(Label.Render(fmt.Sprintf(
			"      score %.3f · %d reverts / %d edits (%.1f%%) · %d wars · %d editors",
			res.Score.Value, len(res.Reverts), res.TotalEdits,
			res.RevertRate()*100, len(res.Wars), res.UniqueEditors)))
		b.WriteString("\n")
	}
	if shown == 0 {
		b.WriteString(Label.Render("  none"))
		b.WriteString("\n")
	}

	b.WriteString(renderWars(r))
	b.WriteString(renderEditors(r))
	b.WriteString(renderViolations(r))
	b.WriteString(renderSkipped(r))

	return b.String()
}

func renderWars(r *pipeline.Report) string {
	var b strings.Builder
	b.WriteString(SectionHeader.Render("WAR CHARACTERISTICS"))
	b.WriteString("\n")

	any := false
	for _, res := range r.Results {
		for _, w := range res.Wars {
			any = true
			stats := w.Stats()
			b.WriteString(fmt.Sprintf("  %s %s\n",
				Value.Render(w.Page),
				Label.Render(fmt.Sprintf("%s → %s",
					w.Start.Format("2006-01-02 15:04"),
					w.End.Format("2006-01-02 15:04")))))
			b.WriteString(Label.Render(fmt.Sprintf(
				"      %d reverts · %d editors · interval avg %.1fm median %.1fm (%.1fm–%.1fm)",
				len(w.Reverts), len(w.Editors),
				stats.AvgMinutes, stats.MedianMinutes,
				stats.MinMinutes, stats.MaxMinutes)))
			b.WriteString("\n")
		}
	}
	if !any {
		b.WriteString(Label.Render("  no edit wars detected"))
		b.WriteString("\n")
	}
	return b.String()
}

func renderEditors(r *pipeline.Report) string {
	var b strings.Builder
	p := r.Summary.Participation

	b.WriteString(SectionHeader.Render("EDITOR BEHAVIOR"))
	b.WriteString("\n")
	b.WriteString(statLine("Unique warring editors", "%d", p.UniqueEditors))
	if p.TotalWars > 0 {
		b.WriteString(statLine("Editors per war", "avg %.1f (min %d, max %d)",
			p.AvgEditorsPerWar, p.MinEditorsPerWar, p.MaxEditorsPerWar))
		b.WriteString(statLine("First-time warriors", "%d", p.NewEditors))
		b.WriteString(statLine("Repeat warriors", "%d (ratio %.2f)",
			p.RepeatEditors, p.NewRepeatRatio()))
	}
	if len(p.MostActive) > 0 {
		b.WriteString(Label.Render("  most active:"))
		b.WriteString("\n")
		for _, a := range p.MostActive {
			b.WriteString(fmt.Sprintf("    %s %s\n",
				Value.Render(a.Editor),
				Label.Render(fmt.Sprintf("(%d wars)", a.Wars))))
		}
	}
	return b.String()
}

func renderViolations(r *pipeline.Report) string {
	var b strings.Builder
	b.WriteString(SectionHeader.Render("THREE-REVERT RULE"))
	b.WriteString("\n")

	any := false
	for _, res := range r.Results {
		for _, v := range res.Violations {
			any = true
			b.WriteString(fmt.Sprintf("  %s\n", ViolationStyle.Render(fmt.Sprintf(
				"%s on %q: %d reverts in window ending %s",
				v.Editor, v.Page, v.Reverts, v.WindowEnd.Format("2006-01-02 15:04")))))
		}
	}
	if !any {
		b.WriteString(Label.Render("  no violations"))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSkipped(r *pipeline.Report) string {
	if len(r.Skipped) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(SectionHeader.Render("SKIPPED"))
	b.WriteString("\n")
	for _, sk := range r.Skipped {
		b.WriteString(fmt.Sprintf("  %s\n", SkippedStyle.Render(
			fmt.Sprintf("%s: %s", sk.Page, sk.Reason))))
	}
	return b.String()
}

// RenderQuick produces a one-line-per-page summary for fast scans.
func RenderQuick(r *pipeline.Report) string {
	var b strings.Builder
	for _, res := range r.Results {
		marker := " "
		if len(res.Wars) > 0 {
			marker = ViolationStyle.Render("!")
		}
		b.WriteString(fmt.Sprintf("%s %-40s %s\n",
			marker,
			Value.Render(truncate(res.Page, 40)),
			Label.Render(fmt.Sprintf("score %.3f · %3d reverts · %d wars",
				res.Score.Value, len(res.Reverts), len(res.Wars)))))
	}
	for _, sk := range r.Skipped {
		b.WriteString(fmt.Sprintf("%s %-40s %s\n",
			SkippedStyle.Render("x"),
			Value.Render(truncate(sk.Page, 40)),
			Label.Render(sk.Reason)))
	}
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// WriteJSON writes the full report to path as indented JSON.
func WriteJSON(path string, r *pipeline.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
