package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaviz/pkg/render"
)

// dotCommand prints the Graphviz source of a schema's class diagram.
func (c *CLI) dotCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "dot [schema]",
		Short: "Print the class diagram as Graphviz DOT",
		Long: `Print the class diagram as Graphviz DOT on standard output.

The output can be piped into any Graphviz tool:

  schemaviz dot visual.yml | dot -Tsvg > visual.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.formats = render.FormatDOT
			opts, err := c.options(args[0], &flags)
			if err != nil {
				return err
			}
			result, err := c.runOnce(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(result.Artifacts[render.FormatDOT])
			return err
		},
	}

	flags.schemaFlags.register(cmd)
	cmd.Flags().StringVar(&flags.rankdir, "rankdir", "", "layout direction: TB, LR, BT, RL")
	cmd.Flags().IntVar(&flags.fontSize, "fontsize", 0, "font size for records and fields")

	return cmd
}
