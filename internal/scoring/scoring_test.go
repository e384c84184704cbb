package scoring

import (
	"math"
	"testing"
)

func TestRevertRateScorer(t *testing.T) {
	s := RevertRateScorer{}

	if got := s.Score(PageStats{TotalEdits: 100, Reverts: 25}); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}
	if got := s.Score(PageStats{TotalEdits: 0}); got != 0 {
		t.Errorf("empty page should score 0, got %f", got)
	}
}

func TestEditWarScorerRawCount(t *testing.T) {
	s := EditWarScorer{}

	for _, wars := range []int{0, 1, 4, 100} {
		if got := s.Score(PageStats{EditWars: wars}); got != float64(wars) {
			t.Errorf("%d wars: expected %d, got %f", wars, wars, got)
		}
	}

	// The component breakdown carries the count through unchanged.
	score := Default(3, 2, 1).Score(PageStats{Page: "X", TotalEdits: 100, Reverts: 10, EditWars: 4, UniqueEditors: 5})
	if got := score.Components["edit_wars"]; got != 4 {
		t.Errorf("expected edit_wars component 4, got %f", got)
	}
}

func TestDiversityScorerClamped(t *testing.T) {
	s := DiversityScorer{}
	// More editors than edits cannot happen with real data, but the
	// scorer must stay bounded on adversarial input.
	if got := s.Score(PageStats{TotalEdits: 2, UniqueEditors: 10}); got != 1 {
		t.Errorf("expected clamp to 1, got %f", got)
	}
}

func TestCompositeWeightedAverage(t *testing.T) {
	c := Default(3, 2, 1)
	score := c.Score(PageStats{Page: "X", TotalEdits: 10, Reverts: 5, EditWars: 1, UniqueEditors: 5})

	// revert_rate=0.5, edit_wars=1, diversity=0.5 -> (1.5+2+0.5)/6 = 2/3
	if math.Abs(score.Value-2.0/3.0) > 1e-9 {
		t.Errorf("expected %f, got %f", 2.0/3.0, score.Value)
	}
	for _, name := range []string{"revert_rate", "edit_wars", "editor_diversity"} {
		if _, ok := score.Components[name]; !ok {
			t.Errorf("missing component %q", name)
		}
	}
}

func TestScoreFiniteAndNonNegative(t *testing.T) {
	c := Default(3, 2, 1)
	cases := []PageStats{
		{Page: "empty"},
		{Page: "no-reverts", TotalEdits: 50, UniqueEditors: 3},
		{Page: "hot", TotalEdits: 10, Reverts: 10, EditWars: 5, UniqueEditors: 10},
	}

	for _, stats := range cases {
		score := c.Score(stats)
		if math.IsNaN(score.Value) || math.IsInf(score.Value, 0) {
			t.Errorf("page %q: score not finite: %f", stats.Page, score.Value)
		}
		if score.Value < 0 {
			t.Errorf("page %q: negative score %f", stats.Page, score.Value)
		}
	}
}

func TestEmptyPageScoresZero(t *testing.T) {
	c := Default(3, 2, 1)
	score := c.Score(PageStats{Page: "empty"})
	if score.Value != 0 {
		t.Errorf("empty page must score exactly 0, got %f", score.Value)
	}
}

func TestRankOrderingAndTieBreaks(t *testing.T) {
	c := NewComposite().Add(RevertRateScorer{}, 1)

	pages := []PageStats{
		{Page: "zeta", TotalEdits: 10, Reverts: 5},
		{Page: "alpha", TotalEdits: 10, Reverts: 5}, // tie with zeta on everything
		{Page: "top", TotalEdits: 10, Reverts: 9},
		{Page: "more-reverts", TotalEdits: 20, Reverts: 10}, // same rate as alpha/zeta, more raw reverts
	}

	ranked := c.Rank(pages)

	want := []string{"top", "more-reverts", "alpha", "zeta"}
	for i, name := range want {
		if ranked[i].Page != name {
			t.Errorf("position %d: expected %q, got %q", i, name, ranked[i].Page)
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	c := Default(3, 2, 1)
	pages := []PageStats{
		{Page: "b", TotalEdits: 10, Reverts: 2, EditWars: 1, UniqueEditors: 4},
		{Page: "a", TotalEdits: 10, Reverts: 2, EditWars: 1, UniqueEditors: 4},
		{Page: "c", TotalEdits: 30, Reverts: 2, EditWars: 0, UniqueEditors: 9},
	}

	first := c.Rank(pages)
	second := c.Rank(pages)
	for i := range first {
		if first[i].Page != second[i].Page {
			t.Errorf("rank not reproducible at %d: %q vs %q", i, first[i].Page, second[i].Page)
		}
	}
}
