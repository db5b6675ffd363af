package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nbmend/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nbmend",
		Short: "Repair nbgrader submissions against the source notebook",
		Long: `nbmend reconciles student notebook submissions with the instructor's
source notebook so they can be autograded. The course is laid out as
<course>/<step>/[<owner>/]<assignment>/<notebook>.ipynb.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: setupCommand,
		PersistentPostRun: teardownCommand,
	}
	for _, name := range mutatingCommands {
		root.AddCommand(newMutateCmd(name))
	}
	root.AddCommand(newInfoCmd())
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.String("cdir", "", "course directory (default: nbmend.toml directory or current directory)")
	flags.String("sdir", "", "source directory (default <course>/source)")
	flags.String("odir", "", "submitted directory (default <course>/submitted)")
	flags.StringSlice("select", nil, "only process owners matching these glob patterns")
	flags.Bool("dry-run", false, "reconcile and report without writing notebooks")
	flags.Bool("no-cache", false, "ignore the result cache")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("verbose", false, "log every submission")
	flags.Bool("timings", false, "show timing information")
	flags.String("ui", "auto", "progress view (auto|on|off)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")
	return root
}

func main() {
	err := newRootCmd().Execute()
	teardown(os.Stderr)
	if err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
