package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"memlens/internal/provider"
	"memlens/internal/snapshot"
	"memlens/internal/summary"
	"memlens/internal/types"
	"memlens/internal/value"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot>...",
	Short: "Print the decoded children of a snapshot's root values",
	Long: `Loads one or more snapshots (TOML manifest or binary) and prints each
root value through the matching collection decoder. Values no decoder
recognizes fall back to a generic field-by-field view.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Int("depth", 3, "maximum nesting depth to decode")
}

var (
	nameColor = color.New(color.FgCyan)
	typeColor = color.New(color.FgGreen)
	addrColor = color.New(color.FgHiBlack)
	failColor = color.New(color.FgRed)
)

func runInspect(cmd *cobra.Command, args []string) error {
	setupColor(cmd)
	depth, _ := cmd.Flags().GetInt("depth")

	reg := provider.NewRegistry()
	out := cmd.OutOrStdout()
	for _, path := range args {
		snap, err := loadSnapshot(path)
		if err != nil {
			return err
		}
		roots, err := snap.RootValues()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if len(args) > 1 {
			fmt.Fprintf(out, "%s:\n", path)
		}
		for _, root := range roots {
			printValue(out, reg, root, 0, depth)
		}
	}
	return nil
}

func loadSnapshot(path string) (*snapshot.Snapshot, error) {
	if strings.HasSuffix(path, ".toml") {
		return snapshot.LoadManifest(path)
	}
	return snapshot.Load(path)
}

func printValue(w io.Writer, reg *provider.Registry, v *value.Value, indent, depth int) {
	pad := strings.Repeat("  ", indent)
	label := fmt.Sprintf("%s%s: %s %s", pad,
		nameColor.Sprint(v.Name()),
		typeColor.Sprint(v.Type().Name),
		addrColor.Sprintf("@ 0x%X", v.Addr()))

	if p, ok := reg.ProviderFor(v); ok {
		if err := p.Update(); err != nil {
			// The decoder degrades, it never blocks inspection.
			fmt.Fprintf(w, "%s %s\n", label, failColor.Sprintf("<decode failed: %v>", err))
			printFields(w, reg, v, indent, depth)
			return
		}
		fmt.Fprintf(w, "%s %s\n", label, headline(v.Type().Name, p.ChildCount()))
		if depth == 0 {
			return
		}
		for i := 0; i < p.ChildCount(); i++ {
			c, err := p.ChildAt(i)
			if err != nil {
				fmt.Fprintf(w, "%s  %s\n", pad, failColor.Sprintf("<child %d: %v>", i, err))
				return
			}
			printValue(w, reg, c, indent+1, depth-1)
		}
		return
	}

	r := v.Type().Resolve()
	switch {
	case r == nil:
		fmt.Fprintf(w, "%s %s\n", label, failColor.Sprint("<unresolvable type>"))
	case r.Kind == types.KindScalar || r.Kind == types.KindPointer:
		if raw, err := v.Uint(); err == nil {
			fmt.Fprintf(w, "%s = %d\n", label, raw)
		} else {
			fmt.Fprintf(w, "%s %s\n", label, failColor.Sprintf("<read failed: %v>", err))
		}
	default:
		fmt.Fprintln(w, label)
		printFields(w, reg, v, indent, depth)
	}
}

// printFields is the generic field-by-field fallback view.
func printFields(w io.Writer, reg *provider.Registry, v *value.Value, indent, depth int) {
	if depth == 0 {
		return
	}
	r := v.Type().Resolve()
	if r == nil {
		return
	}
	for _, f := range r.Fields {
		c, err := v.Child(f.Name)
		if err != nil {
			continue
		}
		printValue(w, reg, c, indent+1, depth-1)
	}
}

// headline picks the summarizer matching the original formatters: two type
// arguments for maps, one for sets; everything else gets a plain size.
func headline(typeName string, count int) string {
	if provider.MatchesHashMap(typeName) {
		if s, ok := summary.TwoArg(typeName, count); ok {
			return s
		}
	}
	if provider.MatchesHashSet(typeName) || provider.MatchesVec(typeName) {
		if s, ok := summary.OneArg(typeName, count); ok {
			return s
		}
	}
	return fmt.Sprintf("size=%d", count)
}
