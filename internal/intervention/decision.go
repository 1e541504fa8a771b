package intervention

import "context"

// Action is the developer's verdict on one step.
type Action string

const (
	ActionAccept Action = "accept"
	ActionEdit   Action = "edit"
	ActionSkip   Action = "skip"
	ActionDebug  Action = "debug"
)

// StepReviewRequested is emitted each time a step is presented for review.
// Attempt counts presentations of the same step, starting at 1.
type StepReviewRequested struct {
	Step    Step
	Total   int
	Attempt int
}

// StepDecision answers a StepReviewRequested.
type StepDecision struct {
	Action Action
}

// DecisionProvider supplies the developer's answers. The workflow blocks on
// each call.
type DecisionProvider interface {
	// Review decides what happens to the presented step.
	Review(ctx context.Context, ev StepReviewRequested) (StepDecision, error)
	// ChooseReplacement picks which step recorded code replaces. current is
	// the position of the step being edited.
	ChooseReplacement(ctx context.Context, steps []Step, current int) (int, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
	// Pause blocks until the developer has finished debugging step.
	Pause(ctx context.Context, step Step) error
}
