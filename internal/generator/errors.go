package generator

import (
	"errors"
	"fmt"
)

// Error categories. A PhaseError wraps one of these together with the cause,
// so both errors.Is(err, ErrGeneration) and errors.Is(err, cause) hold.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrGeneration    = errors.New("generation failed")
	ErrPersistence   = errors.New("persistence failed")
)

// Phase names the stage of a generation run.
type Phase string

const (
	PhaseConfiguration Phase = "configuration"
	PhaseGeneration    Phase = "generation"
	PhaseIntervention  Phase = "intervention"
	PhasePersistence   Phase = "persistence"
)

// PhaseError reports which phase of a run failed and why.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

func configError(format string, args ...any) error {
	return &PhaseError{Phase: PhaseConfiguration, Err: fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))}
}

func generationError(cause error) error {
	return &PhaseError{Phase: PhaseGeneration, Err: fmt.Errorf("%w: %w", ErrGeneration, cause)}
}

func persistenceError(cause error) error {
	return &PhaseError{Phase: PhasePersistence, Err: fmt.Errorf("%w: %w", ErrPersistence, cause)}
}
