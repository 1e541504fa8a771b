package intervention

import (
	"context"
	"strings"
	"testing"
)

// scriptedProvider answers from fixed tables. Steps without a script are
// accepted and questions without an answer get defaultConfirm. The workflow
// calls it sequentially, so it records events without locking.
type scriptedProvider struct {
	// Actions lists the answers per step index, consumed in order.
	Actions map[int][]Action
	// Replacements maps a step index to the position recorded code replaces.
	Replacements map[int]int
	// Answers maps a question substring to the answer. The longest matching
	// substring wins.
	Answers        map[string]bool
	DefaultConfirm bool

	Events    []StepReviewRequested
	Questions []string
	Pauses    []int
}

func (p *scriptedProvider) Review(_ context.Context, ev StepReviewRequested) (StepDecision, error) {
	p.Events = append(p.Events, ev)

	queue := p.Actions[ev.Step.Index]
	if len(queue) == 0 {
		return StepDecision{Action: ActionAccept}, nil
	}
	p.Actions[ev.Step.Index] = queue[1:]
	return StepDecision{Action: queue[0]}, nil
}

func (p *scriptedProvider) ChooseReplacement(_ context.Context, steps []Step, current int) (int, error) {
	if pos, ok := p.Replacements[steps[current].Index]; ok {
		return pos, nil
	}
	return current, nil
}

func (p *scriptedProvider) Confirm(_ context.Context, question string) (bool, error) {
	p.Questions = append(p.Questions, question)
	best, answer := "", p.DefaultConfirm
	for sub, a := range p.Answers {
		if !strings.Contains(question, sub) {
			continue
		}
		if len(sub) > len(best) || (len(sub) == len(best) && sub < best) {
			best, answer = sub, a
		}
	}
	return answer, nil
}

func (p *scriptedProvider) Pause(_ context.Context, step Step) error {
	p.Pauses = append(p.Pauses, step.Index)
	return nil
}

func TestScriptedProviderConfirmPrefersLongestMatch(t *testing.T) {
	dp := &scriptedProvider{Answers: map[string]bool{"Retry": true, "Retry recording": false}}
	for i := 0; i < 20; i++ {
		got, _ := dp.Confirm(context.Background(), "Retry recording for step 2?")
		if got {
			t.Fatal("expected the longer substring to decide the answer")
		}
	}
	if got, _ := dp.Confirm(context.Background(), "Retry?"); !got {
		t.Error("expected the shorter substring to apply when it alone matches")
	}
}
