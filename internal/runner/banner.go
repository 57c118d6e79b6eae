package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/maxvaer/rexprobe/internal/config"
	"github.com/maxvaer/rexprobe/pkg/version"
)

func printBanner(w io.Writer, opts *config.Options, count int) {
	title := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	val := color.New(color.FgHiWhite)
	num := color.New(color.FgYellow)
	if opts.NoColor {
		for _, c := range []*color.Color{title, dim, val, num} {
			c.DisableColor()
		}
	}

	onOff := func(b bool) string {
		if b {
			return color.GreenString("ON")
		}
		return color.RedString("OFF")
	}
	if opts.NoColor {
		onOff = func(b bool) string {
			if b {
				return "ON"
			}
			return "OFF"
		}
	}

	rule := dim.Sprint("  " + strings.Repeat("─", 38))
	fmt.Fprintf(w, "\n  %s %s\n", title.Sprint("rexprobe"), dim.Sprintf("v%s", version.Version))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s    %s\n", dim.Sprint("Candidates:"), num.Sprint(count))
	fmt.Fprintf(w, "  %s       %s\n", dim.Sprint("Threads:"), num.Sprint(opts.Threads))
	fmt.Fprintf(w, "  %s       %s\n", dim.Sprint("Timeout:"), val.Sprint(opts.Timeout))
	if opts.Interval > 0 {
		fmt.Fprintf(w, "  %s      %s\n", dim.Sprint("Interval:"), val.Sprint(opts.Interval))
	}
	if opts.Proxy != "" {
		fmt.Fprintf(w, "  %s         %s\n", dim.Sprint("Proxy:"), val.Sprint(opts.Proxy))
	}
	fmt.Fprintf(w, "  %s      %s\n", dim.Sprint("Download:"), onOff(opts.Download))
	fmt.Fprintf(w, "  %s      %s\n", dim.Sprint("Throttle:"), onOff(opts.AdaptiveThrottle))
	fmt.Fprintf(w, "%s\n\n", rule)
}
