package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/spf13/cobra"
)

func (a *app) inspectCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the topic tree of an outline or mind-map file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.readTree(args[0])
			if err != nil {
				return err
			}
			if err := topictree.Validate(tree, 0); err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(tree)
			}
			if err := printOutline(a.stdout, tree); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "\n%d topics, depth %d\n", tree.Count(), tree.Depth())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}

// printOutline writes one line per node, indented two spaces per level.
func printOutline(w io.Writer, tree *topictree.Tree) error {
	return tree.Walk(func(n *topictree.Node, depth int) error {
		_, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), n.Label)
		return err
	})
}
