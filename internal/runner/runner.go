// Package runner wires generation, ordering and probing into the gen,
// check, match and run flows.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/maxvaer/rexprobe/internal/candidates"
	"github.com/maxvaer/rexprobe/internal/config"
	"github.com/maxvaer/rexprobe/internal/content"
	"github.com/maxvaer/rexprobe/internal/filter"
	"github.com/maxvaer/rexprobe/internal/generate"
	"github.com/maxvaer/rexprobe/internal/hook"
	"github.com/maxvaer/rexprobe/internal/log"
	"github.com/maxvaer/rexprobe/internal/match"
	"github.com/maxvaer/rexprobe/internal/order"
	"github.com/maxvaer/rexprobe/internal/output"
	"github.com/maxvaer/rexprobe/internal/scanner"
)

// TimestampFormat names the per-run log file and content directory.
const TimestampFormat = "20060102-150405"

// Runner executes one invocation. It is not reusable across runs.
type Runner struct {
	opts       *config.Options
	logger     *logrus.Logger
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	now        func() time.Time
	interrupts *interrupter
}

// Option configures a Runner.
type Option func(*Runner)

// WithIO replaces the process streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdin, r.stdout, r.stderr = stdin, stdout, stderr
	}
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithSignals makes SIGINT/SIGTERM cancel the running stage instead of
// killing the process, and enables the interactive pause toggle.
func WithSignals() Option {
	return func(r *Runner) { r.interrupts = newInterrupter() }
}

// New creates a Runner for opts.
func New(opts *config.Options, logger *logrus.Logger, options ...Option) *Runner {
	if logger == nil {
		logger = log.Discard()
	}
	r := &Runner{
		opts:   opts,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Close releases signal handlers.
func (r *Runner) Close() {
	r.interrupts.Stop()
}

// Report summarises a probing run.
type Report struct {
	Results     []scanner.ProbeResult
	Stats       output.Stats
	LogPath     string // empty when no log was written
	ContentDir  string
	Interrupted bool
	PersistErr  error // *PersistenceError when the log could not be saved
}

// Gen expands the pattern, orders the candidates and writes them to the
// output path or stdout.
func (r *Runner) Gen(ctx context.Context) error {
	cands, err := r.generate(ctx)
	if err != nil {
		return err
	}
	return r.writeLines(cands, "candidates")
}

// Check probes literal candidates read from arguments, --input or stdin.
func (r *Runner) Check(ctx context.Context) (*Report, error) {
	if err := r.opts.Validate(); err != nil {
		return nil, err
	}
	urls, err := r.readInput()
	if err != nil {
		return nil, err
	}
	urls, err = r.orderInput(urls)
	if err != nil {
		return nil, err
	}
	return r.probe(ctx, urls)
}

// Match prints the input candidates that fully match the pattern.
func (r *Runner) Match(ctx context.Context) error {
	if r.opts.Pattern == "" {
		return config.ErrNoPattern
	}
	m, err := match.New(r.opts.Pattern)
	if err != nil {
		return &generate.PatternError{Expr: r.opts.Pattern, Err: err}
	}
	lines, err := r.readInput()
	if err != nil {
		return err
	}
	lines, err = r.orderInput(lines)
	if err != nil {
		return err
	}
	matched := m.Filter(lines, func(line string, err error) {
		r.logger.WithField("candidate", line).Warnf("match failed: %v", err)
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	r.logger.WithFields(logrus.Fields{"input": len(lines), "matched": len(matched)}).Debug("match finished")
	return r.writeLines(matched, "matches")
}

// Run generates candidates and probes them in one process.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.opts.Validate(); err != nil {
		return nil, err
	}
	cands, err := r.generate(ctx)
	if err != nil {
		return nil, err
	}
	return r.probe(ctx, cands)
}

// generate produces the ordered candidate sequence. An interrupt keeps the
// candidates produced so far.
func (r *Runner) generate(ctx context.Context) ([]string, error) {
	o := r.opts
	if err := o.ValidateGeneration(); err != nil {
		return nil, err
	}
	policies, err := order.ParseAll(o.Sort)
	if err != nil {
		return nil, err
	}

	mode, total := generate.ModeRandom, o.Count
	if o.Exhaustive {
		mode, total = generate.ModeExhaustive, 0
	}

	stageCtx, cancel := r.interrupts.stage(ctx)
	defer cancel()

	progress := output.NewProgress(r.stderr, "Generating", total, r.quietProgress())
	progress.Start()
	cands, err := generate.Expand(stageCtx, generate.Pattern{Expr: o.Pattern, Limit: o.Limit}, generate.Options{
		Mode:       mode,
		Count:      o.Count,
		Logger:     r.logger,
		OnProgress: progress.Increment,
	})
	progress.Stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
		r.warnf("Generation interrupted, keeping %d candidates", len(cands))
	}

	r.logger.WithFields(logrus.Fields{
		"mode":       mode.String(),
		"candidates": len(cands),
	}).Debug("generation finished")
	return order.Apply(cands, policies), nil
}

// probe runs the Scheduler over urls and writes the run log once.
func (r *Runner) probe(ctx context.Context, urls []string) (*Report, error) {
	o := r.opts
	stamp := r.now().Format(TimestampFormat)
	report := &Report{ContentDir: filepath.Join(o.ContentDir, stamp)}

	client, err := scanner.NewClient(scanner.ClientOptions{
		Timeout:  o.Timeout,
		Threads:  o.Threads,
		Proxy:    o.Proxy,
		Insecure: o.Insecure,
	})
	if err != nil {
		return nil, err
	}
	// Downloads follow redirects; probes never do.
	dlClient := *client
	dlClient.CheckRedirect = nil

	fetcher := content.New(content.Config{
		Dir:           report.ContentDir,
		Client:        &dlClient,
		UserAgent:     o.UserAgent,
		Headers:       o.Headers,
		MaxBodySize:   o.MaxBodySize,
		MaxConcurrent: o.DownloadThreads,
	})
	prober, err := scanner.NewHTTPProber(scanner.ProberConfig{
		Client:    client,
		Timeout:   o.Timeout,
		UserAgent: o.UserAgent,
		Headers:   o.Headers,
		Download:  o.Download,
		Fetcher:   fetcher,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}

	chain, err := r.filterChain()
	if err != nil {
		return nil, err
	}
	if chain.Len() > 0 {
		r.logger.WithField("filters", chain.Len()).Debug("display filters active")
	}

	if !o.Quiet {
		printBanner(r.stderr, o, len(urls))
	}

	progress := output.NewProgress(r.stderr, "Probing", len(urls), r.quietProgress())
	printer := output.NewStatusPrinter(r.stdout, chain, o.NoColor)
	printer.AttachProgress(progress)

	stageCtx, cancel := r.interrupts.stage(ctx)
	defer cancel()

	var pauser *scanner.Pauser
	if f, ok := r.stdin.(*os.File); ok && r.interrupts != nil {
		var cleanup func()
		pauser, cleanup = startStdinToggle(f, func(paused bool) {
			progress.SetPaused(paused)
			if paused {
				progress.Println(nil, "[*] PAUSED, press Enter or Space to resume")
			} else {
				progress.Println(nil, "[*] RESUMED")
			}
		}, r.interrupts.interrupt)
		defer cleanup()
	}

	var hooks *hook.Runner
	if o.OnResultCmd != "" {
		hooks = hook.NewRunner(o.OnResultCmd, r.stderr, r.logger)
	}

	sched := scanner.NewScheduler(prober, scanner.SchedulerConfig{
		Budget:    o.Threads,
		Throttler: scanner.NewThrottler(o.Interval, o.AdaptiveThrottle, r.logger),
		Pauser:    pauser,
		OnResult: func(res scanner.ProbeResult) {
			if printer.Print(res) && hooks != nil {
				hooks.Run(stageCtx, &res)
			}
		},
	})

	start := time.Now()
	progress.Start()
	runLog := sched.Run(stageCtx, urls)
	progress.Stop()

	report.Results = runLog.Results()
	// Time spent paused is not probing time.
	report.Stats = output.Summarize(report.Results, time.Since(start)-pauser.PausedDuration())
	if stageCtx.Err() != nil {
		report.Interrupted = true
		r.warnf("Interrupted, %d of %d probes completed", len(report.Results), len(urls))
	}

	if len(report.Results) == 0 {
		fmt.Fprintln(r.stdout, "Nothing saved: no results")
		return report, nil
	}

	logPath := o.OutputPath
	if logPath == "" {
		logPath = filepath.Join(o.LogDir, stamp+output.Extension(o.Format))
	}
	if err := output.WriteLog(logPath, o.Format, report.Results, report.Stats); err != nil {
		report.PersistErr = &PersistenceError{Path: logPath, Err: err}
		r.logger.WithField("path", logPath).Error(err)
		fmt.Fprintf(r.stderr, "[!] %v\n", report.PersistErr)
	} else {
		report.LogPath = logPath
		fmt.Fprintf(r.stdout, "Saved log at: %s\n", logPath)
	}
	fmt.Fprintf(r.stdout, "Saved contents at: %s\n", report.ContentDir)

	if !o.Quiet {
		s := report.Stats
		fmt.Fprintf(r.stderr, "[+] %d probes | success: %d | redirect: %d | status: %d | errors: %d | downloads: %d | %s | %.1f req/s\n",
			s.Total, s.Success, s.Redirects, s.Statuses, s.Errors, s.Downloads, s.Duration.Round(time.Millisecond), s.RequestsPerSec)
	}
	return report, nil
}

func (r *Runner) filterChain() (*filter.Chain, error) {
	o := r.opts
	chain := filter.NewChain()
	if len(o.IncludeStatus) > 0 || len(o.ExcludeStatus) > 0 {
		chain.Add(filter.NewStatusFilter(o.IncludeStatus, o.ExcludeStatus))
	}
	if len(o.HideOutcomes) > 0 {
		outcomes := make([]scanner.Outcome, 0, len(o.HideOutcomes))
		for _, name := range o.HideOutcomes {
			oc, err := scanner.ParseOutcome(name)
			if err != nil {
				return nil, err
			}
			outcomes = append(outcomes, oc)
		}
		chain.Add(filter.NewOutcomeFilter(outcomes...))
	}
	return chain, nil
}

// readInput returns literal candidates from arguments, --input ("-" is
// stdin) or piped stdin, in that order of preference.
func (r *Runner) readInput() ([]string, error) {
	o := r.opts
	switch {
	case len(o.Args) > 0:
		return append([]string(nil), o.Args...), nil
	case o.InputFile == "-":
		return candidates.Read(r.stdin)
	case o.InputFile != "":
		return candidates.Load(o.InputFile)
	case r.stdin != nil && !isTerminal(r.stdin):
		return candidates.Read(r.stdin)
	}
	return nil, ErrNoInput
}

// orderInput applies --sort to literal input only when it was set.
func (r *Runner) orderInput(lines []string) ([]string, error) {
	if !r.opts.SortSet {
		return lines, nil
	}
	policies, err := order.ParseAll(r.opts.Sort)
	if err != nil {
		return nil, err
	}
	return order.Apply(lines, policies), nil
}

func (r *Runner) writeLines(lines []string, what string) error {
	if r.opts.OutputPath == "" {
		return candidates.Write(r.stdout, lines)
	}
	if err := candidates.Save(r.opts.OutputPath, lines); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	r.infof("Wrote %d %s to %s", len(lines), what, r.opts.OutputPath)
	return nil
}

func (r *Runner) quietProgress() bool {
	return r.opts.Quiet || r.opts.DisableProgressBar
}

func (r *Runner) infof(format string, args ...any) {
	if !r.opts.Quiet {
		fmt.Fprintf(r.stderr, "[+] "+format+"\n", args...)
	}
}

func (r *Runner) warnf(format string, args ...any) {
	fmt.Fprintf(r.stderr, "[!] "+format+"\n", args...)
}

func isTerminal(rd io.Reader) bool {
	f, ok := rd.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
