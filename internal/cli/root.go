// Package cli implements mindmapctl, the offline companion to the vidmind
// server: it converts outlines into mind-map documents and inspects them.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the mindmapctl command tree. Output goes to stdout,
// diagnostics to stderr.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var verbose bool
	a := &app{stdin: stdin, stdout: stdout}

	root := &cobra.Command{
		Use:           "mindmapctl",
		Short:         "Convert outlines into XMind and Word mind maps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(a.exportCommand(), a.inspectCommand(), a.sampleCommand())
	return root
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	log    *slog.Logger
}
