package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/pipeline"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

// inspectCommand prints the compiled graph as tables instead of a diagram.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags schemaFlags

	cmd := &cobra.Command{
		Use:   "inspect [schema]",
		Short: "Show the records and references of a schema",
		Long: `Show the records and references of a schema.

Prints a table with the node id, field count, function-field count and
outgoing reference count of every record, followed by the list of
references as record.field → target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Input:     args[0],
				InputType: flags.inputType,
				Focus:     flags.focus,
				Depth:     flags.depth,
			}
			s, err := pipeline.Load(opts)
			if err != nil {
				return err
			}
			g, err := pipeline.Compile(s, opts)
			if err != nil {
				return err
			}
			writeInspection(cmd.OutOrStdout(), s, g)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// writeInspection renders the record table, the reference list and a summary.
func writeInspection(w io.Writer, s *schema.Schema, g *compiler.Graph) {
	rows := make([][]string, 0, len(g.Nodes))
	fields := 0
	for _, n := range g.Nodes {
		rec, _ := s.Record(n.Name)
		funcs := 0
		for _, f := range rec.Fields {
			if compiler.Classify(f.Type) == compiler.KindFunction {
				funcs++
			}
		}
		fields += len(rec.Fields)
		rows = append(rows, []string{
			n.ID,
			n.Name,
			strconv.Itoa(len(rec.Fields)),
			strconv.Itoa(funcs),
			strconv.Itoa(len(g.Outgoing(n.ID))),
		})
	}

	writeHeading(w, "Records")
	writeTable(w, []string{"ID", "Record", "Fields", "Functions", "References"}, rows)
	fmt.Fprintln(w)

	writeHeading(w, "References")
	writeList(w, referenceLines(s, g), "none")
	fmt.Fprintln(w)

	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%s · %s · %s",
		countOf(g.NodeCount(), "record"),
		countOf(fields, "field"),
		countOf(g.EdgeCount(), "reference"))))
}

// referenceLines formats each edge as "Record.field → Target" in edge order.
func referenceLines(s *schema.Schema, g *compiler.Graph) []string {
	lines := make([]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		field := fmt.Sprintf("f%d", e.Slot)
		if rec, ok := s.Record(from.Name); ok && e.Slot < len(rec.Fields) {
			field = rec.Fields[e.Slot].Name
		}
		lines = append(lines, fmt.Sprintf("%s.%s %s %s",
			from.Name, field, StyleDim.Render(iconArrow), StyleHighlight.Render(to.Name)))
	}
	return lines
}
