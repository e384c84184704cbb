// Package scoring derives a controversy score per page and ranks pages.
// Scorers score page statistics; a composite combines them with named
// weights.
//
// Design principles:
// - Scorers are stateless functions over page counts
// - Components are combined as a weighted linear combination
// - Full precision is carried through scoring; round only when rendering
package scoring

import (
	"sort"
)

// PageStats is the input to scoring: counts produced by the analysis
// pipeline for one page.
type PageStats struct {
	Page          string
	TotalEdits    int
	Reverts       int
	EditWars      int
	UniqueEditors int
}

// Scorer scores one component of page controversy.
// Implementations should be stateless and thread-safe.
type Scorer interface {
	// Name returns a unique identifier for this component
	Name() string

	// Score returns the component value (higher = more controversial)
	Score(s PageStats) float64
}

// RevertRateScorer scores the fraction of edits that are reverts.
type RevertRateScorer struct{}

func (RevertRateScorer) Name() string { return "revert_rate" }

func (RevertRateScorer) Score(s PageStats) float64 {
	if s.TotalEdits == 0 {
		return 0 // empty page scores zero, never divides by zero
	}
	return float64(s.Reverts) / float64(s.TotalEdits)
}

// EditWarScorer contributes the number of edit war episodes. The raw
// count feeds the combination directly; a smaller weight damps it
// relative to the rate components.
type EditWarScorer struct{}

func (EditWarScorer) Name() string { return "edit_wars" }

func (EditWarScorer) Score(s PageStats) float64 {
	return float64(s.EditWars)
}

// DiversityScorer scores how many distinct editors are involved
// relative to edit volume. Many editors fighting over few edits is a
// stronger controversy signal than one editor churning.
type DiversityScorer struct{}

func (DiversityScorer) Name() string { return "editor_diversity" }

func (DiversityScorer) Score(s PageStats) float64 {
	if s.TotalEdits == 0 {
		return 0
	}
	d := float64(s.UniqueEditors) / float64(s.TotalEdits)
	if d > 1 {
		d = 1
	}
	return d
}

// Composite combines scorers with weights.
// Final score = sum(scorer.Score * weight) / sum(weights)
type Composite struct {
	scorers []Scorer
	weights []float64
}

// NewComposite creates an empty composite scorer.
func NewComposite() *Composite { return &Composite{} }

// Add adds a scorer with a weight.
func (c *Composite) Add(s Scorer, weight float64) *Composite {
	c.scorers = append(c.scorers, s)
	c.weights = append(c.weights, weight)
	return c
}

// Default returns the standard controversy scorer with the given
// weights for revert rate, edit war count, and editor diversity.
func Default(revertRate, editWars, diversity float64) *Composite {
	return NewComposite().
		Add(RevertRateScorer{}, revertRate).
		Add(EditWarScorer{}, editWars).
		Add(DiversityScorer{}, diversity)
}

// Score is a scored page with its component breakdown.
type Score struct {
	Page       string
	Value      float64
	Components map[string]float64
	Reverts    int // raw count, used for ranking tie-breaks
}

// Score computes the weighted score and component breakdown for a page.
// Always finite and non-negative, including for TotalEdits == 0.
func (c *Composite) Score(s PageStats) Score {
	components := make(map[string]float64, len(c.scorers))
	var sum, weightSum float64
	for i, scorer := range c.scorers {
		v := scorer.Score(s)
		components[scorer.Name()] = v
		sum += v * c.weights[i]
		weightSum += c.weights[i]
	}

	value := 0.0
	if weightSum > 0 {
		value = sum / weightSum
	}

	return Score{
		Page:       s.Page,
		Value:      value,
		Components: components,
		Reverts:    s.Reverts,
	}
}

// Rank scores all pages and sorts them: score descending, ties by raw
// revert count descending, then page id ascending. The ordering is
// fully deterministic for any input.
func (c *Composite) Rank(pages []PageStats) []Score {
	scores := make([]Score, len(pages))
	for i, p := range pages {
		scores[i] = c.Score(p)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Value != scores[j].Value {
			return scores[i].Value > scores[j].Value
		}
		if scores[i].Reverts != scores[j].Reverts {
			return scores[i].Reverts > scores[j].Reverts
		}
		return scores[i].Page < scores[j].Page
	})

	return scores
}
