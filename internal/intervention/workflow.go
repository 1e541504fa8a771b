package intervention

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/ticket"
)

// State is a phase of the review workflow.
type State string

const (
	StateIdle             State = "idle"
	StateGenerating       State = "generating"
	StatePerStepReview    State = "per_step_review"
	StateAccepted         State = "accepted"
	StateEdited           State = "edited"
	StateSkipped          State = "skipped"
	StateAllStepsReviewed State = "all_steps_reviewed"
	StateManualCapture    State = "manual_capture"
	StateMerging          State = "merging"
	StateDone             State = "done"
)

// DefaultDedupPrefix is how many leading characters of a manual recording
// must already appear in the script for it to count as a duplicate.
const DefaultDedupPrefix = 40

// Input is the generated test the developer reviews.
type Input struct {
	Ticket     *ticket.Ticket
	Code       string
	OutputPath string
	BaseURL    string
	TestName   string
}

// Outcome is the merged script and what happened to each step.
type Outcome struct {
	Steps          []Step
	Script         string
	Modified       int
	Skipped        int
	ManualCaptured bool
	LogsWritten    []string
}

// Workflow drives the per-step review state machine. It is not safe for
// concurrent use.
type Workflow struct {
	decisions   DecisionProvider
	recorder    Recorder
	logs        *KnowledgeLog
	logger      *zap.Logger
	dedupPrefix int

	state       State
	transitions []State
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithKnowledgeLog enables the knowledge-base logs offered after merging.
func WithKnowledgeLog(k *KnowledgeLog) Option {
	return func(w *Workflow) { w.logs = k }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithDedupPrefix sets the manual-capture duplicate check length.
func WithDedupPrefix(n int) Option {
	return func(w *Workflow) {
		if n > 0 {
			w.dedupPrefix = n
		}
	}
}

// NewWorkflow creates a Workflow in the Idle state.
func NewWorkflow(decisions DecisionProvider, recorder Recorder, opts ...Option) *Workflow {
	w := &Workflow{
		decisions:   decisions,
		recorder:    recorder,
		logger:      zap.NewNop(),
		dedupPrefix: DefaultDedupPrefix,
		state:       StateIdle,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// State returns the current state.
func (w *Workflow) State() State { return w.state }

// Transitions returns every state entered since the workflow was created.
func (w *Workflow) Transitions() []State {
	return append([]State(nil), w.transitions...)
}

func (w *Workflow) enter(s State) {
	w.state = s
	w.transitions = append(w.transitions, s)
}

// Run reviews in.Code step by step, optionally captures extra manual steps,
// merges the result and offers the knowledge logs. Recorder failures are
// logged and leave the step unchanged; decision provider errors abort.
func (w *Workflow) Run(ctx context.Context, in Input) (*Outcome, error) {
	w.enter(StateGenerating)
	steps := Split(in.Code)

	for i := 0; i < len(steps); i++ {
		if err := w.reviewStep(ctx, in, steps, i); err != nil {
			return nil, err
		}
	}
	w.enter(StateAllStepsReviewed)

	opts := MergeOptions{
		Describe: describeName(in.Ticket),
		TestName: in.TestName,
		BaseURL:  in.BaseURL,
	}

	out := &Outcome{}
	manual, err := w.manualCapture(ctx, in)
	if err != nil {
		return nil, err
	}

	w.enter(StateMerging)
	script := Merge(steps, opts)
	if manual != "" && !containsPrefix(script, manual, w.dedupPrefix) {
		steps = append(steps, Step{
			Index:             len(steps) + 1,
			Description:       "Manual steps",
			Code:              "// Manual steps recorded by developer\n" + manual,
			DeveloperModified: true,
		})
		script = Merge(steps, opts)
		out.ManualCaptured = true
	} else if manual != "" {
		w.logger.Info("Manual recording already present in script, not appended")
	}

	out.Steps = steps
	out.Script = script
	for _, s := range steps {
		if s.DeveloperModified {
			out.Modified++
		}
		if s.Skipped {
			out.Skipped++
		}
	}

	if w.logs != nil && in.Ticket != nil {
		written, err := w.writeLogs(ctx, in, steps)
		if err != nil {
			return nil, err
		}
		out.LogsWritten = written
	}

	w.enter(StateDone)
	return out, nil
}

func (w *Workflow) reviewStep(ctx context.Context, in Input, steps []Step, i int) error {
	for attempt := 1; ; attempt++ {
		w.enter(StatePerStepReview)
		dec, err := w.decisions.Review(ctx, StepReviewRequested{
			Step:    steps[i],
			Total:   len(steps),
			Attempt: attempt,
		})
		if err != nil {
			return fmt.Errorf("reviewing step %d: %w", steps[i].Index, err)
		}

		switch dec.Action {
		case ActionAccept, "":
			w.enter(StateAccepted)
			return nil
		case ActionSkip:
			steps[i].Skip()
			w.enter(StateSkipped)
			return nil
		case ActionEdit:
			if err := w.edit(ctx, in, steps, i); err != nil {
				return err
			}
			w.enter(StateEdited)
			return nil
		case ActionDebug:
			if err := w.decisions.Pause(ctx, steps[i]); err != nil {
				return fmt.Errorf("debugging step %d: %w", steps[i].Index, err)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", steps[i].Index, dec.Action)
		}
	}
}

// edit records a replacement for one of the steps. Recorder problems are
// absorbed so the review can continue.
func (w *Workflow) edit(ctx context.Context, in Input, steps []Step, i int) error {
	tmp, err := os.CreateTemp("", "autotest-step-*.spec.ts")
	if err != nil {
		w.logger.Warn("Could not create recording file, step unchanged", zap.Error(err))
		return nil
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	body, err := w.record(ctx, in.BaseURL, path)
	if err != nil {
		w.logger.Warn("Recording failed, step unchanged", zap.Int("step", steps[i].Index), zap.Error(err))
		return nil
	}

	target, err := w.decisions.ChooseReplacement(ctx, steps, i)
	if err != nil {
		return fmt.Errorf("choosing replacement for step %d: %w", steps[i].Index, err)
	}
	if target < 0 || target >= len(steps) {
		target = i
	}
	steps[target].Replace(body)
	return nil
}

// record runs the recorder and returns the body of the captured test.
func (w *Workflow) record(ctx context.Context, url, path string) (string, error) {
	if w.recorder == nil {
		return "", errors.New("no recorder configured")
	}
	if err := w.recorder.Record(ctx, url, path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading recording: %w", err)
	}
	body := ExtractBody(string(data))
	if body == "" {
		return "", errors.New("recording is empty")
	}
	return body, nil
}

// manualCapture offers to record additional steps into the side file next
// to the output. It returns the recorded body, or "" when skipped.
func (w *Workflow) manualCapture(ctx context.Context, in Input) (string, error) {
	ok, err := w.decisions.Confirm(ctx, "Record additional manual steps?")
	if err != nil {
		return "", fmt.Errorf("manual capture: %w", err)
	}
	if !ok {
		return "", nil
	}
	w.enter(StateManualCapture)

	path := ManualCapturePath(in.OutputPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.logger.Warn("Could not create manual capture directory", zap.Error(err))
		return "", nil
	}
	for {
		body, err := w.record(ctx, in.BaseURL, path)
		if err == nil {
			return body, nil
		}
		w.logger.Warn("Manual recording failed", zap.String("path", path), zap.Error(err))
		retry, cerr := w.decisions.Confirm(ctx, "Recording failed. Retry?")
		if cerr != nil {
			return "", fmt.Errorf("manual capture: %w", cerr)
		}
		if !retry {
			return "", nil
		}
	}
}

func (w *Workflow) writeLogs(ctx context.Context, in Input, steps []Step) ([]string, error) {
	var modifiedCode strings.Builder
	var modified bool
	for _, s := range steps {
		if s.DeveloperModified {
			modified = true
			modifiedCode.WriteString(s.Code)
			modifiedCode.WriteString("\n")
		}
	}

	type entry struct {
		question string
		path     string
		write    func() error
	}
	var entries []entry
	if modified {
		entries = append(entries, entry{
			question: "Save the intervention mapping to the knowledge base?",
			path:     w.logs.Paths.MappingLog,
			write:    func() error { return w.logs.WriteMapping(in.Ticket, in.OutputPath, steps) },
		})
		if sel := ExtractSelectors(modifiedCode.String()); len(sel) > 0 {
			entries = append(entries, entry{
				question: fmt.Sprintf("Save %d discovered selector(s) to the knowledge base?", len(sel)),
				path:     w.logs.Paths.SelectorsLog,
				write:    func() error { return w.logs.WriteSelectors(in.Ticket, sel) },
			})
		}
		if data := ExtractTestData(modifiedCode.String()); len(data) > 0 {
			entries = append(entries, entry{
				question: fmt.Sprintf("Save %d test data value(s) to the knowledge base?", len(data)),
				path:     w.logs.Paths.TestDataLog,
				write:    func() error { return w.logs.WriteTestData(in.Ticket, data) },
			})
		}
	}
	entries = append(entries, entry{
		question: "Record the ticket to test file mapping?",
		path:     w.logs.Paths.CardMappingLog,
		write:    func() error { return w.logs.WriteCardMapping(in.Ticket, in.OutputPath) },
	})

	var written []string
	for _, e := range entries {
		if e.path == "" {
			continue
		}
		ok, err := w.decisions.Confirm(ctx, e.question)
		if err != nil {
			return nil, fmt.Errorf("knowledge log: %w", err)
		}
		if !ok {
			continue
		}
		if err := e.write(); err != nil {
			w.logger.Warn("Could not write knowledge log", zap.String("path", e.path), zap.Error(err))
			continue
		}
		written = append(written, e.path)
	}
	return written, nil
}

// ManualCapturePath is the side file manual recordings are written to:
// "login.spec.ts" becomes "login.manual.spec.ts".
func ManualCapturePath(outputPath string) string {
	for _, suffix := range []string{".spec.ts", ".spec.js", ".test.ts", ".test.js", ".ts", ".js"} {
		if strings.HasSuffix(outputPath, suffix) {
			return strings.TrimSuffix(outputPath, suffix) + ".manual.spec.ts"
		}
	}
	return outputPath + ".manual.spec.ts"
}

func describeName(t *ticket.Ticket) string {
	if t == nil {
		return "Generated test"
	}
	return fmt.Sprintf("%s: %s", t.Key, t.Summary)
}
