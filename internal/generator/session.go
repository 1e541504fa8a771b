// Package generator runs one test generation: retrieval, prompt, model call,
// cleanup, scoring, optional review and persistence.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/config"
	"github.com/ziadkadry99/auto-test/internal/confidence"
	"github.com/ziadkadry99/auto-test/internal/history"
	"github.com/ziadkadry99/auto-test/internal/intervention"
	"github.com/ziadkadry99/auto-test/internal/knowledge"
	"github.com/ziadkadry99/auto-test/internal/llm"
	"github.com/ziadkadry99/auto-test/internal/logger"
	"github.com/ziadkadry99/auto-test/internal/prompt"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
	"github.com/ziadkadry99/auto-test/internal/ticket"
)

// generationTemperature keeps the model close to the retrieved patterns.
const generationTemperature = 0.2

// Request describes one generation. It is not modified during a run.
type Request struct {
	Ticket      *ticket.Ticket
	Environment string
	// OutputPath defaults to <output_dir>/<ticket slug>.spec.ts.
	OutputPath  string
	PageObject  bool
	Overwrite   bool
	DryRun      bool
	Interactive bool
	// UserRole selects a declared test account from the users file.
	UserRole string
}

// GeneratedTest is a script written to disk.
type GeneratedTest struct {
	FilePath     string
	TestName     string
	Ticket       *ticket.Ticket
	Environment  string
	GeneratedAt  time.Time
	Contexts     []retrieval.Context
	Confidence   confidence.Result
	Content      string
	Intervention *intervention.Outcome
	Usage        llm.CompletionResponse
}

// Level is the display bucket of the confidence score.
func (g *GeneratedTest) Level() confidence.Level {
	return confidence.Label(g.Confidence.Score)
}

// Preview is what a dry run reports instead of calling the model.
type Preview struct {
	FilePath string
	Prompt   string
	Contexts []retrieval.Context
	Estimate llm.Estimate
}

// Result holds either the generated test or, for a dry run, the preview.
type Result struct {
	Test    *GeneratedTest
	Preview *Preview
}

// Deps are the collaborators a Session uses. Provider may be nil for dry
// runs, Workflow only matters for interactive runs and History is optional.
// Without a Logger the one stored in the run context is used.
type Deps struct {
	Retriever retrieval.Retriever
	Provider  llm.Provider
	Workflow  *intervention.Workflow
	History   *history.Store
	Logger    *zap.Logger
	Now       func() time.Time
}

// Session carries the state of one generation run.
type Session struct {
	cfg  *config.Config
	req  Request
	deps Deps

	outputPath string
	baseURL    string
	user       *knowledge.User
}

// NewSession creates a Session for req.
func NewSession(cfg *config.Config, req Request, deps Deps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Session{cfg: cfg, req: req, deps: deps}
}

// OutputPath is the resolved script location. It is set once Run has
// validated the request.
func (s *Session) OutputPath() string { return s.outputPath }

// Run executes the session. Configuration problems abort before retrieval;
// retrieval failures only reduce the context; model and write failures are
// returned as a *PhaseError.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	t := s.req.Ticket
	log := s.deps.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log = log.With(zap.String("ticket", t.Key))

	contexts := s.retrieve(ctx, log)
	opts := prompt.Options{
		Environment: s.req.Environment,
		BaseURL:     s.baseURL,
		PageObject:  s.req.PageObject,
		User:        s.user,
	}
	completion := llm.CompletionRequest{
		Model:       s.cfg.Model,
		Messages:    prompt.Messages(t, contexts, opts),
		Temperature: generationTemperature,
	}

	if s.req.DryRun {
		return &Result{Preview: &Preview{
			FilePath: s.outputPath,
			Prompt:   prompt.Build(t, contexts, opts),
			Contexts: contexts,
			Estimate: llm.EstimateRequest(completion),
		}}, nil
	}

	log.Info("Generating test", zap.String("provider", s.deps.Provider.Name()), zap.Int("contexts", len(contexts)))
	resp, err := s.deps.Provider.Complete(ctx, completion)
	if err != nil {
		return nil, generationError(err)
	}
	if resp == nil {
		return nil, generationError(errors.New("provider returned no response"))
	}
	code := CleanOutput(resp.Content)
	if code == "" {
		return nil, generationError(errors.New("provider returned no content"))
	}

	test := &GeneratedTest{
		FilePath:    s.outputPath,
		TestName:    testName(t),
		Ticket:      t,
		Environment: s.req.Environment,
		Contexts:    contexts,
		Usage:       *resp,
	}

	if s.req.Interactive {
		outcome, err := s.deps.Workflow.Run(ctx, intervention.Input{
			Ticket:     t,
			Code:       code,
			OutputPath: s.outputPath,
			BaseURL:    s.baseURL,
			TestName:   test.TestName,
		})
		if err != nil {
			return nil, &PhaseError{Phase: PhaseIntervention, Err: err}
		}
		test.Intervention = outcome
		code = outcome.Script
	}

	test.Content = code
	test.Confidence = confidence.Explain(contexts, code)
	test.GeneratedAt = s.deps.Now()

	if err := s.write(test); err != nil {
		return nil, err
	}
	log.Info("Test written",
		zap.String("path", test.FilePath),
		zap.Float64("confidence", test.Confidence.Score))

	s.record(ctx, log, test)
	return &Result{Test: test}, nil
}

func (s *Session) validate() error {
	t := s.req.Ticket
	if t == nil {
		return configError("no ticket given")
	}
	if err := t.Validate(); err != nil {
		return configError("%v", err)
	}

	s.baseURL = s.cfg.BaseURL(s.req.Environment)
	if s.baseURL == "" {
		return configError("no base URL configured for environment %q", s.req.Environment)
	}

	if !s.req.DryRun && s.deps.Provider == nil {
		return configError("no LLM provider configured")
	}
	if s.req.Interactive && !s.req.DryRun && s.deps.Workflow == nil {
		return configError("interactive mode needs a review workflow")
	}

	if s.req.UserRole != "" {
		users, err := knowledge.LoadUsers(filepath.Join(s.cfg.KnowledgeDir, knowledge.UsersFile))
		if err != nil {
			return configError("%v", err)
		}
		u, ok := knowledge.FindUser(users, s.req.UserRole)
		if !ok {
			return configError("no user with role %q in %s", s.req.UserRole, knowledge.UsersFile)
		}
		s.user = &u
	}

	s.outputPath = s.req.OutputPath
	if s.outputPath == "" {
		s.outputPath = filepath.Join(s.cfg.OutputDir, t.Slug()+".spec.ts")
	}
	if !s.req.Overwrite && !s.req.DryRun {
		if _, err := os.Stat(s.outputPath); err == nil {
			return persistenceError(fmt.Errorf("%s already exists (use --overwrite to replace it)", s.outputPath))
		}
	}
	return nil
}

func (s *Session) retrieve(ctx context.Context, log *zap.Logger) []retrieval.Context {
	if s.deps.Retriever == nil {
		log.Warn("No retriever configured, generating without context")
		return nil
	}
	contexts := s.deps.Retriever.Retrieve(ctx, s.req.Ticket.Query(), s.cfg.Retrieval.TopK)
	if len(contexts) == 0 {
		log.Warn("No knowledge retrieved for ticket")
	}
	return contexts
}

func (s *Session) write(test *GeneratedTest) error {
	if err := os.MkdirAll(filepath.Dir(test.FilePath), 0o755); err != nil {
		return persistenceError(fmt.Errorf("creating output directory: %w", err))
	}
	if err := os.WriteFile(test.FilePath, []byte(test.Content), 0o644); err != nil {
		return persistenceError(fmt.Errorf("writing %s: %w", test.FilePath, err))
	}
	return nil
}

// record stores the run in history. The script is already on disk, so a
// failure here is only logged.
func (s *Session) record(ctx context.Context, log *zap.Logger, test *GeneratedTest) {
	if s.deps.History == nil {
		return
	}
	ids := make([]string, len(test.Contexts))
	for i, c := range test.Contexts {
		ids[i] = c.ID
	}
	rec := history.Record{
		TicketKey:    test.Ticket.Key,
		FilePath:     test.FilePath,
		TestName:     test.TestName,
		Environment:  test.Environment,
		Provider:     s.deps.Provider.Name(),
		Model:        s.cfg.Model,
		Strategy:     string(s.cfg.Retrieval.Strategy),
		Confidence:   test.Confidence.Score,
		ContextIDs:   ids,
		Interactive:  test.Intervention != nil,
		InputTokens:  test.Usage.InputTokens,
		OutputTokens: test.Usage.OutputTokens,
		CreatedAt:    test.GeneratedAt,
	}
	if test.Intervention != nil {
		rec.StepsModified = test.Intervention.Modified
		rec.StepsSkipped = test.Intervention.Skipped
	}
	if _, err := s.deps.History.Add(ctx, rec); err != nil {
		log.Warn("Could not record generation history", zap.Error(err))
	}
}

func testName(t *ticket.Ticket) string {
	return fmt.Sprintf("%s: %s", t.Key, t.Summary)
}
