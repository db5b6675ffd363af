package stage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultCellTimeout bounds each cell of an executed notebook.
const DefaultCellTimeout = 60 * time.Second

// NBConvert executes notebooks with `jupyter nbconvert --execute`. Errors
// raised by cells are kept in the outputs instead of failing the run.
type NBConvert struct {
	Command     string        // default "jupyter"
	CellTimeout time.Duration // per-cell limit inside nbconvert
	Timeout     time.Duration // whole-process limit, 0 for none
}

// Args returns the arguments passed to Command for path.
func (n NBConvert) Args(path string) []string {
	cell := n.CellTimeout
	if cell <= 0 {
		cell = DefaultCellTimeout
	}
	return []string{
		"nbconvert",
		"--execute",
		"--ExecutePreprocessor.timeout=" + strconv.Itoa(seconds(cell)),
		"--ExecutePreprocessor.interrupt_on_timeout=True",
		"--ExecutePreprocessor.allow_errors=True",
		"--to", "notebook",
		"--inplace",
		path,
	}
}

// seconds rounds d up to whole seconds; nbconvert reads 0 as no limit.
func seconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// Execute runs the command and returns its stderr tail on failure.
func (n NBConvert) Execute(ctx context.Context, path string) error {
	command := n.Command
	if command == "" {
		command = "jupyter"
	}
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	// #nosec G204 -- command comes from the course configuration
	cmd := exec.CommandContext(ctx, command, n.Args(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s", command, n.Timeout)
	}
	if tail := lastLine(stderr.String()); tail != "" {
		return fmt.Errorf("%s: %w: %s", command, err, tail)
	}
	return fmt.Errorf("%s: %w", command, err)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// Noop skips execution.
type Noop struct{}

// Execute does nothing.
func (Noop) Execute(context.Context, string) error { return nil }
