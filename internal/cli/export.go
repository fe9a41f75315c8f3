package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/vidmind/internal/export"
	"github.com/dgallion1/vidmind/internal/parser"
	"github.com/dgallion1/vidmind/internal/topictree"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

func (a *app) exportCommand() *cobra.Command {
	var (
		out      string
		format   string
		maxDepth int
	)
	cmd := &cobra.Command{
		Use:   "export <input>",
		Short: "Write an outline file as a mind-map document",
		Long: `Reads an outline (JSON, YAML, Markdown, HTML, plain text, CSV, XMind or
DOCX) and writes it as an XMind workbook or Word outline. Use "-" to read a
JSON topic tree from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			tree, err := a.readTree(args[0])
			if err != nil {
				return err
			}

			if out == "" {
				out = defaultOutput(args[0], f)
			}
			abs, err := filepath.Abs(out)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			enc, err := export.ForFormat(f)
			if err != nil {
				return err
			}
			ex := export.New(osfs.New(filepath.Dir(abs)), ".", enc, export.WithMaxDepth(maxDepth))
			doc, err := ex.Export(tree, filepath.Base(abs))
			if err != nil {
				return err
			}

			a.log.Debug("exported", "format", f, "nodes", tree.Count(), "bytes", doc.Size)
			fmt.Fprintln(a.stdout, abs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: input name with the format's extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "xmind", "Output format: xmind or docx")
	cmd.Flags().IntVar(&maxDepth, "max-depth", topictree.DefaultMaxDepth, "Reject trees deeper than this")
	return cmd
}

// readTree parses path with the parser matching its extension, or a JSON
// topic tree from stdin when path is "-".
func (a *app) readTree(path string) (*topictree.Tree, error) {
	if path == "-" {
		tree, err := topictree.DecodeJSON(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return tree, nil
	}

	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tree, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	a.log.Debug("parsed", "path", path, "nodes", tree.Count(), "depth", tree.Depth())
	return tree, nil
}

func defaultOutput(input string, f export.Format) string {
	if input == "-" {
		return "mindmap" + f.Extension()
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	out := base + f.Extension()
	if out == input {
		// Same format in and out: avoid overwriting the source.
		out = base + ".out" + f.Extension()
	}
	return out
}
