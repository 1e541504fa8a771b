package intervention

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
)

var reviewActions = []struct {
	action Action
	label  string
}{
	{ActionAccept, "Accept: keep the generated code"},
	{ActionEdit, "Edit: record this step in the browser"},
	{ActionSkip, "Skip: leave a placeholder"},
	{ActionDebug, "Debug: pause, then review again"},
}

// TerminalProvider asks the developer through interactive terminal prompts.
type TerminalProvider struct {
	Out io.Writer
}

// NewTerminalProvider prints step code to stdout.
func NewTerminalProvider() *TerminalProvider {
	return &TerminalProvider{Out: os.Stdout}
}

func (p *TerminalProvider) Review(_ context.Context, ev StepReviewRequested) (StepDecision, error) {
	fmt.Fprintf(p.Out, "\n--- Step %d of %d: %s ---\n%s\n\n", ev.Step.Index, ev.Total, ev.Step.Description, ev.Step.Code)

	labels := make([]string, len(reviewActions))
	for i, a := range reviewActions {
		labels[i] = a.label
	}
	sel := promptui.Select{
		Label: fmt.Sprintf("Step %d", ev.Step.Index),
		Items: labels,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return StepDecision{}, fmt.Errorf("step review prompt: %w", err)
	}
	return StepDecision{Action: reviewActions[idx].action}, nil
}

func (p *TerminalProvider) ChooseReplacement(_ context.Context, steps []Step, current int) (int, error) {
	labels := make([]string, len(steps))
	for i, s := range steps {
		labels[i] = fmt.Sprintf("Step %d: %s", s.Index, s.Description)
	}
	sel := promptui.Select{
		Label:     "Which step should the recording replace?",
		Items:     labels,
		CursorPos: current,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return 0, fmt.Errorf("replacement prompt: %w", err)
	}
	return idx, nil
}

func (p *TerminalProvider) Confirm(_ context.Context, question string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return true, nil
}

func (p *TerminalProvider) Pause(_ context.Context, step Step) error {
	fmt.Fprintf(p.Out, "Paused at step %d. Debug in your browser, then continue.\n", step.Index)
	prompt := promptui.Prompt{
		Label:     "Press Enter to review the step again",
		AllowEdit: true,
	}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("pause prompt: %w", err)
	}
	return nil
}
