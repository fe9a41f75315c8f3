package cli

import (
	"encoding/json"
	"errors"

	"github.com/dgallion1/vidmind/internal/analyze"
	"github.com/spf13/cobra"
)

func (a *app) sampleCommand() *cobra.Command {
	var template, lecture bool
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a built-in analysis result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if template && lecture {
				return errors.New("--template and --lecture are mutually exclusive")
			}
			name := "canned"
			switch {
			case template:
				name = "sample"
			case lecture:
				name = "lecture"
			}
			payload, _ := analyze.Payload(name)
			res := payload()

			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"status":  "success",
				"summary": res.Summary,
				"mindmap": res.Tree,
			})
		},
	}
	cmd.Flags().BoolVar(&template, "template", false, "Print the template preview result")
	cmd.Flags().BoolVar(&lecture, "lecture", false, "Print the prompt-engineering lecture result")
	return cmd
}
