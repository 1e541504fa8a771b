// Package confidence scores a generated test by how well it was grounded in
// retrieved knowledge and how closely it follows the selector and waiting
// rules.
package confidence

import (
	"strings"

	"github.com/ziadkadry99/auto-test/internal/knowledge"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
)

const (
	base              = 0.5
	similarityWeight  = 0.3
	selectorThreshold = 5
)

// Level is a display bucket for a score.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Factor is one term that contributed to a score.
type Factor struct {
	Name  string
	Delta float64
}

// Result is a score with the factors that produced it.
type Result struct {
	Score   float64
	Factors []Factor
}

// codeSignal adjusts the score when code contains marker.
type codeSignal struct {
	name    string
	marker  string
	delta   float64
	missing bool // applies when marker is absent
}

var codeSignals = []codeSignal{
	{name: "raw text selector", marker: "text=", delta: -0.1},
	{name: "fixed delay", marker: "waitForTimeout(", delta: -0.15},
	{name: "no assertions", marker: "expect(", delta: -0.2, missing: true},
	{name: "test id selector", marker: "getByTestId(", delta: 0.1},
	{name: "role selector", marker: "getByRole(", delta: 0.05},
	{name: "visibility assertion", marker: "toBeVisible(", delta: 0.05},
	{name: "environment variables", marker: "process.env", delta: 0.05},
}

// Score returns the confidence in [0,1] for code generated from contexts.
// It is deterministic.
func Score(contexts []retrieval.Context, code string) float64 {
	return Explain(contexts, code).Score
}

// Explain computes the score and lists every term that applied.
func Explain(contexts []retrieval.Context, code string) Result {
	r := Result{Score: base}
	add := func(name string, delta float64) {
		r.Score += delta
		r.Factors = append(r.Factors, Factor{Name: name, Delta: delta})
	}

	if len(contexts) > 0 {
		var sum float64
		var workflow bool
		var selectors int
		for _, c := range contexts {
			sum += c.Similarity
			switch c.Type {
			case knowledge.TypeWorkflow:
				workflow = true
			case knowledge.TypeSelector:
				selectors++
			}
		}
		add("context similarity", similarityWeight*sum/float64(len(contexts)))
		if workflow {
			add("workflow context", 0.1)
		}
		if selectors >= selectorThreshold {
			add("selector coverage", 0.1)
		}
	}

	for _, s := range codeSignals {
		if strings.Contains(code, s.marker) != s.missing {
			add(s.name, s.delta)
		}
	}

	r.Score = clamp(r.Score)
	return r
}

// Label maps a score to a display level.
func Label(score float64) Level {
	switch {
	case score >= 0.75:
		return LevelHigh
	case score >= 0.5:
		return LevelMedium
	default:
		return LevelLow
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
