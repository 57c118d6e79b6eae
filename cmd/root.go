package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/maxvaer/rexprobe/internal/config"
	"github.com/maxvaer/rexprobe/internal/log"
	"github.com/maxvaer/rexprobe/internal/order"
	"github.com/maxvaer/rexprobe/internal/output"
	"github.com/maxvaer/rexprobe/internal/runner"
	"github.com/maxvaer/rexprobe/internal/scanner"
	"github.com/maxvaer/rexprobe/pkg/version"
)

// app holds the state shared by the root command and its subcommands.
type app struct {
	opts       *config.Options
	configPath string
	headers    []string
	logger     *logrus.Logger

	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	signals bool
}

func newApp() *app {
	return &app{
		opts:   config.Default(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"GENERATION", []string{"pattern", "limit", "count", "exhaustive", "sort"}},
	{"INPUT", []string{"input"}},
	{"RATE-LIMIT", []string{"threads", "timeout", "interval", "adaptive-throttle"}},
	{"HTTP", []string{"user-agent", "header", "proxy", "insecure"}},
	{"CONTENT", []string{"download", "download-threads", "max-body-size", "content-dir"}},
	{"DISPLAY", []string{"include-status", "exclude-status", "hide", "on-result", "disable-progress-bar", "no-color", "quiet", "verbose"}},
	{"OUTPUT", []string{"output", "format", "log-dir"}},
	{"CONFIGURATION", []string{"config"}},
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "rexprobe <command> [flags]",
		Short:   "Generate URLs from a regular expression and probe them over HTTP",
		Version: version.Version,
		Long: `rexprobe expands a regular expression into candidate URLs, orders them,
and probes each candidate concurrently with a HEAD request. Every probe is
classified (success, redirect, status, client or transport error) and
recorded in a run log written once at the end of the run. Redirect targets,
and with --download successful responses, are saved to a content directory.`,
		Example: `  rexprobe gen -p 'https://www\.example\.com/\d{7}' -c 20
  rexprobe gen -p 'https://example\.com/item[0-9]{2}' --exhaustive -s natural -o urls.txt
  rexprobe check --input urls.txt -d
  cat urls.txt | rexprobe check -x 404 --format json
  rexprobe match -p 'https://example\.com/item1\d' --input urls.txt
  rexprobe run -p 'https://example\.com/[a-c]{2}' --exhaustive -i 200ms --threads 10`,
		PersistentPreRunE: a.prepare,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	o := a.opts
	f := root.PersistentFlags()

	// Generation
	f.StringVarP(&o.Pattern, "pattern", "p", config.DefaultPattern, "Regular expression to expand")
	f.IntVarP(&o.Limit, "limit", "l", config.DefaultLimit, "Repetition bound for *, + and {n,}")
	f.IntVarP(&o.Count, "count", "c", config.DefaultCount, "Number of random samples")
	f.BoolVar(&o.Exhaustive, "exhaustive", false, "Enumerate every string of the bounded pattern")
	f.VarP(&policyListValue{target: &o.Sort}, "sort", "s", "Ordering policies, applied left to right: "+strings.Join(order.Names, ", "))

	// Input
	f.StringVar(&o.InputFile, "input", "", "File of literal candidates, one per line (- for stdin)")

	// Rate limit
	f.IntVar(&o.Threads, "threads", config.DefaultThreads, "Maximum probes in flight")
	f.DurationVarP(&o.Timeout, "timeout", "t", config.DefaultTimeout, "HTTP request timeout")
	f.DurationVarP(&o.Interval, "interval", "i", 0, "Minimum delay between probe dispatches")
	f.BoolVar(&o.AdaptiveThrottle, "adaptive-throttle", false, "Back off on 429/503 responses")

	// HTTP
	f.StringVar(&o.UserAgent, "user-agent", o.UserAgent, "User-Agent header")
	f.StringSliceVarP(&a.headers, "header", "H", nil, "Custom headers (Key: Value)")
	f.StringVar(&o.Proxy, "proxy", "", "HTTP/SOCKS proxy URL")
	f.BoolVarP(&o.Insecure, "insecure", "k", false, "Skip TLS certificate verification")

	// Content
	f.BoolVarP(&o.Download, "download", "d", false, "Download bodies of 2xx responses")
	f.IntVar(&o.DownloadThreads, "download-threads", config.DefaultDownloadThreads, "Maximum body downloads in flight")
	f.Int64Var(&o.MaxBodySize, "max-body-size", config.DefaultMaxBodySize, "Maximum stored body size in bytes (0 for unlimited)")
	f.StringVar(&o.ContentDir, "content-dir", config.DefaultContentDir, "Root directory for downloaded content")

	// Display
	f.Var(&statusListValue{target: &o.IncludeStatus}, "include-status", "Only show these status codes (e.g. 200,301-308)")
	f.VarP(&statusListValue{target: &o.ExcludeStatus}, "exclude-status", "x", "Hide these status codes (e.g. 404,500-599)")
	f.StringSliceVar(&o.HideOutcomes, "hide", nil, "Hide outcomes: success, redirect, status, client_error, transport_error")
	f.StringVar(&o.OnResultCmd, "on-result", "", "Shell command run per displayed result (JSON on stdin, REXPROBE_* env)")
	f.BoolVar(&o.DisableProgressBar, "disable-progress-bar", false, "Do not draw the progress line")
	f.BoolVar(&o.NoColor, "no-color", false, "Disable colored output")
	f.BoolVarP(&o.Quiet, "quiet", "q", false, "Minimal output")
	f.BoolVarP(&o.Verbose, "verbose", "v", false, "Debug logging")

	// Output
	f.StringVarP(&o.OutputPath, "output", "o", "", "Candidates file (gen, match) or run-log path (check, run)")
	f.StringVar(&o.Format, "format", config.DefaultFormat, "Run-log format: yaml, json, csv")
	f.StringVar(&o.LogDir, "log-dir", config.DefaultLogDir, "Directory for timestamped run logs")

	// Configuration
	f.StringVar(&a.configPath, "config", "", "Config file (default ./"+config.DefaultConfigFile+" or "+config.XDGConfigPath()+")")

	_ = root.RegisterFlagCompletionFunc("sort", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return order.Names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{output.FormatYAML, output.FormatJSON, output.FormatCSV}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(a.genCmd(), a.checkCmd(), a.matchCmd(), a.runCmd())
	root.SetHelpFunc(helpFunc)
	return root
}

// prepare merges the config file under the command-line flags and sets up
// logging. Flags given explicitly always win over the file.
func (a *app) prepare(cmd *cobra.Command, _ []string) error {
	o := a.opts
	flags := cmd.Flags()

	if len(a.headers) > 0 {
		o.Headers = make(map[string]string, len(a.headers))
		for _, h := range a.headers {
			k, v, ok := strings.Cut(h, ":")
			if !ok {
				return fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
			}
			o.Headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	path := config.FindConfigFile(a.configPath)
	if a.configPath != "" && path == "" {
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, a.configPath)
	}
	if path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return fmt.Errorf("loading config %s: %w", path, err)
		}
		file.ApplyTo(o, flags.Changed)
	}
	if flags.Changed("sort") {
		o.SortSet = true
	}

	for _, name := range o.HideOutcomes {
		if _, err := scanner.ParseOutcome(name); err != nil {
			return err
		}
	}

	if o.NoColor {
		color.NoColor = true
	}
	if f, ok := a.stderr.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		o.DisableProgressBar = true
	}

	a.logger = log.New(a.stderr, o.Verbose)
	if path != "" {
		a.logger.WithField("path", path).Debug("loaded config file")
	}
	return nil
}

func (a *app) newRunner() *runner.Runner {
	opts := []runner.Option{runner.WithIO(a.stdin, a.stdout, a.stderr)}
	if a.signals {
		opts = append(opts, runner.WithSignals())
	}
	return runner.New(a.opts, a.logger, opts...)
}

// Execute runs the root command.
func Execute() {
	a := newApp()
	a.signals = true
	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
