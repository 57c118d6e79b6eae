package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/rexprobe/internal/order"
)

// policyListValue implements pflag.Value for ordering policies. The first
// Set replaces the default; later ones append, so -s desc -s natural and
// -s desc,natural are equivalent.
type policyListValue struct {
	target  *[]string
	changed bool
}

func (v *policyListValue) String() string {
	if v.target == nil {
		return ""
	}
	return strings.Join(*v.target, ",")
}

func (v *policyListValue) Set(s string) error {
	if !v.changed {
		*v.target = nil
		v.changed = true
	}
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, err := order.Parse(name)
		if err != nil {
			return err
		}
		*v.target = append(*v.target, string(p))
	}
	return nil
}

func (v *policyListValue) Type() string { return "policies" }

// statusListValue implements pflag.Value for comma-separated status codes
// and inclusive ranges such as 500-599.
type statusListValue struct {
	target *[]int
}

func (v *statusListValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *statusListValue) Set(s string) error {
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(p, "-")
		from, err := parseStatus(lo)
		if err != nil {
			return err
		}
		to := from
		if isRange {
			if to, err = parseStatus(hi); err != nil {
				return err
			}
			if to < from {
				return fmt.Errorf("invalid status range %q", p)
			}
		}
		for code := from; code <= to; code++ {
			*v.target = append(*v.target, code)
		}
	}
	return nil
}

func (v *statusListValue) Type() string { return "codes" }

func parseStatus(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid status code %q: %w", s, err)
	}
	if n < 100 || n > 599 {
		return 0, fmt.Errorf("status code %d out of range", n)
	}
	return n, nil
}

func helpFunc(cmd *cobra.Command, _ []string) {
	w := cmd.ErrOrStderr()
	fmt.Fprint(w, helpBanner(cmd.Root().Version))
	long := cmd.Long
	if long == "" {
		long = cmd.Short
	}
	fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", long, cmd.UseLine())
	if cmd.Example != "" {
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\nCommands:\n")
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				fmt.Fprintf(w, "  %-10s %s\n", sub.Name(), sub.Short)
			}
		}
	}
	fmt.Fprintf(w, "\nFlags:\n")
	for _, g := range helpGroups {
		fmt.Fprintf(w, "\n%s:\n", g.title)
		for _, name := range g.flags {
			if f := lookupFlag(cmd, name); f != nil {
				fmt.Fprintln(w, formatFlag(f))
			}
		}
	}
	fmt.Fprintln(w)
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil {
		return f
	}
	return cmd.Root().PersistentFlags().Lookup(name)
}

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
                              __
   ________ _  ______  _________  / /_  ___
  / ___/ _ \ |/_/ __ \/ ___/ __ \/ __ \/ _ \
 / /  /  __/>  </ /_/ / /  / /_/ / /_/ /  __/
/_/   \___/_/|_/ .___/_/   \____/_.___/\___/  %s
              /_/

`, ver)
}
