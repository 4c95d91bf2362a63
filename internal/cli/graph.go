package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkgfed/pkgfed/pkg/errors"
	"github.com/pkgfed/pkgfed/pkg/render"
)

func (c *CLI) graphCommand() *cobra.Command {
	opts := gatherOpts{}
	var output string

	cmd := &cobra.Command{
		Use:   "graph <id> <version>",
		Short: "Gather a release and render its dependency graph",
		Long: `Graph runs a gather and renders the resulting candidate records as a
Graphviz graph, colored by feed. The output format follows the file
extension: .dot writes DOT source, .svg renders with Graphviz.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, _, err := c.gather(cmd.Context(), args[0], args[1], opts)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printWarning("nothing to render for %s %s", args[0], args[1])
				return nil
			}

			dot := render.ToDOT(records)
			switch {
			case output == "":
				fmt.Print(dot)
				return nil
			case strings.HasSuffix(output, ".dot"):
				return writeOutput(output, []byte(dot))
			case strings.HasSuffix(output, ".svg"):
				svg, err := render.RenderSVG(cmd.Context(), dot)
				if err != nil {
					return err
				}
				return writeOutput(output, svg)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unsupported output format %q (want .dot or .svg)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot or .svg, default: DOT to stdout)")
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "target framework (default from config)")
	cmd.Flags().BoolVar(&opts.prerelease, "prerelease", false, "include prerelease versions")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the response cache")

	return cmd
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	printSuccess("Wrote %s", path)
	printFile(path)
	return nil
}
