package confidence

import (
	"math"
	"testing"

	"github.com/ziadkadry99/auto-test/internal/knowledge"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScore_NoContextNoSignals(t *testing.T) {
	// Only the missing-assertion penalty applies.
	if got := Score(nil, "await page.goto('/');"); !approx(got, 0.3) {
		t.Errorf("Score = %v, want 0.3", got)
	}
}

func TestScore_PerfectWorkflowContext(t *testing.T) {
	contexts := []retrieval.Context{{ID: "workflows/login.md", Type: knowledge.TypeWorkflow, Score: 1, Similarity: 1}}
	code := `await page.getByRole('button', { name: 'Sign in' }).click();
await page.fill('#password', process.env.ADMIN_PASSWORD);
await expect(page).toHaveURL(/dashboard/);`

	// 0.5 + 0.3 + 0.1 + 0.05 + 0.05 sums to 1.0.
	r := Explain(contexts, code)
	if !approx(r.Score, 1.0) {
		t.Errorf("Score = %v, want 1.0", r.Score)
	}
	if len(r.Factors) != 4 {
		t.Errorf("expected 4 factors, got %+v", r.Factors)
	}
}

func TestScore_UsesRawSimilarityForBoostedContexts(t *testing.T) {
	contexts := []retrieval.Context{
		{Type: knowledge.TypePattern, Score: 1.35, Similarity: 0.5, Boosted: true},
		{Type: knowledge.TypePattern, Score: 0.9, Similarity: 0.3, Boosted: true},
	}
	// 0.5 + 0.3*0.4 + expect present
	if got := Score(contexts, "expect(x)"); !approx(got, 0.62) {
		t.Errorf("Score = %v, want 0.62", got)
	}
}

func TestScore_SelectorCoverage(t *testing.T) {
	var contexts []retrieval.Context
	for i := 0; i < 5; i++ {
		contexts = append(contexts, retrieval.Context{Type: knowledge.TypeSelector, Similarity: 0})
	}
	if got := Score(contexts, "expect(a)"); !approx(got, 0.6) {
		t.Errorf("Score with 5 selectors = %v, want 0.6", got)
	}
	if got := Score(contexts[:4], "expect(a)"); !approx(got, 0.5) {
		t.Errorf("Score with 4 selectors = %v, want 0.5", got)
	}
}

func TestScore_Penalties(t *testing.T) {
	code := `await page.click('text=Login'); await page.waitForTimeout(500);`
	// 0.5 - 0.1 - 0.15 - 0.2
	if got := Score(nil, code); !approx(got, 0.05) {
		t.Errorf("Score = %v, want 0.05", got)
	}
}

func TestScore_Clamped(t *testing.T) {
	high := []retrieval.Context{{Type: knowledge.TypeWorkflow, Similarity: 1}}
	for i := 0; i < 6; i++ {
		high = append(high, retrieval.Context{Type: knowledge.TypeSelector, Similarity: 1})
	}
	code := "expect(page.getByTestId('a')).toBeVisible(); page.getByRole('b'); process.env.X"
	if got := Score(high, code); got != 1 {
		t.Errorf("Score = %v, want clamp to 1", got)
	}

	negative := []retrieval.Context{{Type: knowledge.TypePattern, Similarity: -1}}
	if got := Score(negative, "text= waitForTimeout("); got != 0 {
		t.Errorf("Score = %v, want clamp to 0", got)
	}
}

func TestScore_RangeAndDeterminism(t *testing.T) {
	codes := []string{"", "expect(", "text= getByTestId(", "waitForTimeout( process.env toBeVisible("}
	sims := []float64{-1, -0.3, 0, 0.4, 1}
	for _, code := range codes {
		for _, s := range sims {
			ctx := []retrieval.Context{{Type: knowledge.TypeFixture, Similarity: s}}
			a, b := Score(ctx, code), Score(ctx, code)
			if a != b {
				t.Errorf("non-deterministic score for %q", code)
			}
			if a < 0 || a > 1 {
				t.Errorf("score %v out of range for %q / %v", a, code, s)
			}
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{1, LevelHigh},
		{0.75, LevelHigh},
		{0.74, LevelMedium},
		{0.5, LevelMedium},
		{0.49, LevelLow},
		{0, LevelLow},
	}
	for _, tt := range tests {
		if got := Label(tt.score); got != tt.want {
			t.Errorf("Label(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
