package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
	"github.com/awscfgdiagram/orthoroute/pkg/session"
)

type editOpts struct {
	routing routingFlags
	output  string
}

// editCommand creates the interactive edit command.
func (c *CLI) editCommand() *cobra.Command {
	opts := &editOpts{}

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Move icons interactively and watch connectors re-route",
		Long: `Edit opens a diagram in the terminal. Tab selects an icon, the arrow keys
move it and every move re-routes the connectors. Press s to save the moved
diagram and c to copy the routed JSON to the clipboard.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts)
		},
	}

	opts.routing.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "save to this file instead of the input")

	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, input string, opts *editOpts) error {
	ctx := cmd.Context()
	routing, err := opts.routing.apply(c.Config.Routing)
	if err != nil {
		return err
	}
	d, err := diagram.ReadDiagramFile(input)
	if err != nil {
		return err
	}

	dir, err := dataDir()
	if err != nil {
		return err
	}
	sessions, err := session.NewFileStore(filepath.Join(dir, "sessions"))
	if err != nil {
		return err
	}

	mgr := session.NewManager(sessions, route.New(routing, c.Logger), c.Logger)
	if err := mgr.Cleanup(ctx); err != nil {
		c.Logger.Warn("session cleanup failed", "err", err)
	}
	s, err := mgr.Open(ctx, filepath.Base(input), d)
	if err != nil {
		return err
	}
	defer mgr.Close(ctx, s.ID)

	out := opts.output
	if out == "" {
		out = input
	}
	model := NewEditorModel(ctx, mgr, s, out)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}
