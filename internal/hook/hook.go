// Package hook runs a user command for each displayed probe result.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maxvaer/rexprobe/internal/log"
	"github.com/maxvaer/rexprobe/internal/scanner"
)

// DefaultTimeout bounds one hook invocation.
const DefaultTimeout = 30 * time.Second

// resultJSON is the payload sent to the hook command on stdin.
type resultJSON struct {
	Index       int    `json:"index"`
	URL         string `json:"url"`
	Outcome     string `json:"outcome"`
	StatusCode  int    `json:"status,omitempty"`
	RedirectURL string `json:"redirect,omitempty"`
	Content     string `json:"content,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Runner executes a shell command per result. Result fields are passed as
// JSON on stdin and as REXPROBE_* environment variables; they are never
// spliced into the command line.
type Runner struct {
	cmd     string
	timeout time.Duration
	out     io.Writer
	logger  *logrus.Logger
}

// NewRunner creates a hook runner. Command output goes to out.
func NewRunner(cmd string, out io.Writer, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = log.Discard()
	}
	return &Runner{cmd: cmd, timeout: DefaultTimeout, out: out, logger: logger}
}

// Run executes the hook for result. Errors are logged and never stop the
// run.
func (r *Runner) Run(ctx context.Context, result *scanner.ProbeResult) {
	payload := resultJSON{
		Index:       result.Index,
		URL:         result.URL,
		Outcome:     result.Outcome.String(),
		StatusCode:  result.StatusCode,
		RedirectURL: result.RedirectURL,
		Content:     result.ContentPath,
		Error:       result.Error,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.WithField("url", result.URL).Warnf("hook payload: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	shell, args := shellCommand()
	cmd := exec.CommandContext(ctx, shell, append(args, r.cmd)...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = r.out
	cmd.Stderr = r.out
	cmd.Env = append(os.Environ(),
		"REXPROBE_INDEX="+strconv.Itoa(result.Index),
		"REXPROBE_URL="+result.URL,
		"REXPROBE_OUTCOME="+payload.Outcome,
		"REXPROBE_STATUS="+strconv.Itoa(result.StatusCode),
		"REXPROBE_REDIRECT="+result.RedirectURL,
		"REXPROBE_CONTENT="+result.ContentPath,
	)

	if err := cmd.Run(); err != nil {
		r.logger.WithFields(logrus.Fields{
			"index": result.Index,
			"url":   result.URL,
		}).Warnf("hook failed: %v", err)
	}
}

func shellCommand() (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}
	}
	return "sh", []string{"-c"}
}
