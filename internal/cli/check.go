package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/pipeline"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

type checkOpts struct {
	routing routingFlags
	noCache bool
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	opts := &checkOpts{}

	cmd := &cobra.Command{
		Use:   "check [file]...",
		Short: "Report connectors that break the routing rules",
		Long: `Check validates connector routes: every segment axis-aligned, no
immediate reversals, stems leaving perpendicular to their side, ports on the
icon boundary and port spacing on shared sides.

Routed diagrams (*.routed.json) are checked as stored; plain diagrams are
routed first. The command fails when any violation is found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args, opts)
		},
	}

	opts.routing.register(cmd)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, args []string, opts *checkOpts) error {
	ctx := cmd.Context()
	routing, err := opts.routing.apply(c.Config.Routing)
	if err != nil {
		return err
	}
	files, err := pipeline.ExpandPaths(args)
	if err != nil {
		return err
	}

	var runner *pipeline.Runner
	total := 0
	for _, f := range files {
		var rd *diagram.Routed
		if isRouted(f) {
			if rd, err = diagram.ReadRoutedFile(f); err != nil {
				return err
			}
		} else {
			d, err := diagram.ReadDiagramFile(f)
			if err != nil {
				return err
			}
			if runner == nil {
				if runner, err = c.newRunner(ctx, opts.noCache); err != nil {
					return err
				}
				defer runner.Close()
			}
			if rd, err = runner.Route(ctx, d, pipeline.Options{Routing: routing}); err != nil {
				return err
			}
		}

		violations := rd.Violations(routing)
		total += len(violations)
		for _, id := range rd.Dangling {
			printWarning("%s: edge %s has a missing endpoint", f, id)
		}
		if len(violations) == 0 {
			printSuccess("%s: %d routes ok", f, len(rd.Routes))
			continue
		}
		printError("%s: %d violation(s)", f, len(violations))
		writeViolations(cmd.OutOrStdout(), violations)
	}

	if total > 0 {
		return fmt.Errorf("%d violation(s) found", total)
	}
	return nil
}

// writeViolations prints violations as a table.
func writeViolations(w io.Writer, violations []route.Violation) {
	rows := make([][]string, len(violations))
	for i, v := range violations {
		edge := v.EdgeID
		if edge == "" {
			edge = "—"
		}
		rows[i] = []string{edge, v.Rule, v.Detail}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("Edge", "Rule", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(colorWarn)
			}
			return lipgloss.NewStyle().Foreground(colorText)
		})
	fmt.Fprintln(w, t.Render())
}
