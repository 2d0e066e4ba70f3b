package idf

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrLaunch marks failures to spawn the build tool at all, as opposed to the
// tool running and exiting unsuccessfully.
var ErrLaunch = errors.New("launch build tool")

// Outcome is the result of one idf.py invocation.
type Outcome struct {
	Action   Action
	ExitCode int
	Duration time.Duration
}

// Success reports whether the process exited with status zero.
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}

// Runner invokes idf.py against a project directory. Implementations return
// an error only when the process could not be started or waited on; a
// non-zero exit is reported through Outcome.
type Runner interface {
	Run(ctx context.Context, dir string, action Action) (Outcome, error)
}

const (
	DefaultShell = "bash"
	DefaultIDF   = "idf.py"
)

// Tool describes how to reach idf.py on this machine.
type Tool struct {
	Shell        string // Shell used to source the export script
	ExportScript string // ESP-IDF export.sh, sourced before every call
	IDF          string // idf.py executable
	EnvFile      string // Optional dotenv file merged into the environment
}

// Command returns the shell command line for action against dir.
func (t Tool) Command(dir string, action Action) string {
	idf := t.IDF
	if idf == "" {
		idf = DefaultIDF
	}

	parts := []string{shellQuote(idf), "-C", shellQuote(dir)}
	for _, a := range action.Argv() {
		parts = append(parts, shellQuote(a))
	}
	line := strings.Join(parts, " ")

	if t.ExportScript != "" {
		line = ". " + shellQuote(t.ExportScript) + " && " + line
	}
	return line
}

func (t Tool) shell() string {
	if t.Shell == "" {
		return DefaultShell
	}
	return t.Shell
}

// ShellRunner runs idf.py through a shell so the ESP-IDF export script can
// prepare the environment first.
type ShellRunner struct {
	Tool Tool

	// OnLine receives each line of combined stdout/stderr. May be nil.
	OnLine func(line string)
}

// NewShellRunner creates a runner for the given tool settings.
func NewShellRunner(tool Tool) *ShellRunner {
	return &ShellRunner{Tool: tool}
}

// Run executes action and waits for it to finish.
func (r *ShellRunner) Run(ctx context.Context, dir string, action Action) (Outcome, error) {
	start := time.Now()
	out := Outcome{Action: action, ExitCode: -1}

	env, err := buildEnv(os.Environ(), r.Tool.EnvFile)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	cmd := exec.CommandContext(ctx, r.Tool.shell(), "-c", r.Tool.Command(dir, action))
	cmd.Env = env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	cmd.Stderr = cmd.Stdout // merge stderr into stdout

	if err := cmd.Start(); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrLaunch, action, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if r.OnLine != nil {
			r.OnLine(scanner.Text())
		}
	}

	err = cmd.Wait()
	out.Duration = time.Since(start)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, fmt.Errorf("%w: %s: %v", ErrLaunch, action, err)
		}
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	out.ExitCode = 0
	return out, nil
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=+,@", r)
}
