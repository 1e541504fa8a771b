package intervention

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Recorder captures browser interactions into a test script at outputPath.
type Recorder interface {
	Record(ctx context.Context, url, outputPath string) error
}

// PlaywrightRecorder runs the Playwright code generator as a subprocess.
// Args may contain the {url} and {output} placeholders.
type PlaywrightRecorder struct {
	Command string
	Args    []string
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewPlaywrightRecorder returns a recorder running
// "npx playwright codegen --target=playwright-test -o {output} {url}".
func NewPlaywrightRecorder() *PlaywrightRecorder {
	return &PlaywrightRecorder{
		Command: "npx",
		Args:    []string{"playwright", "codegen", "--target=playwright-test", "-o", "{output}", "{url}"},
		Timeout: 30 * time.Minute,
	}
}

// Record blocks until the recorder window is closed or the timeout expires.
func (r *PlaywrightRecorder) Record(ctx context.Context, url, outputPath string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := r.args(url, outputPath)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("recorder %s %s: %w", r.Command, strings.Join(args, " "), err)
	}
	return nil
}

// args expands the placeholders. An argument that expands to nothing is
// dropped, so an empty URL opens a blank page.
func (r *PlaywrightRecorder) args(url, outputPath string) []string {
	rep := strings.NewReplacer("{url}", url, "{output}", outputPath)
	out := make([]string, 0, len(r.Args))
	for _, a := range r.Args {
		if v := rep.Replace(a); v != "" {
			out = append(out, v)
		}
	}
	return out
}
