package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/render"
	"github.com/awscfgdiagram/orthoroute/pkg/session"
)

// Editor styles
var (
	editorStatusStyle = lipgloss.NewStyle().Foreground(colorMuted)
	editorErrorStyle  = lipgloss.NewStyle().Foreground(colorFail)
	editorNodeStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	editorHelpStyle   = lipgloss.NewStyle().Foreground(colorFaint)
)

const (
	defaultStep = 10.0
	minStep     = 1.0
	maxStep     = 160.0
)

// =============================================================================
// EditorModel - Interactive icon moving
// =============================================================================

// routedMsg carries the result of a move back into the model. A superseded
// pass arrives with a SUPERSEDED error and is dropped.
type routedMsg struct {
	routed *diagram.Routed
	err    error
}

// savedMsg reports a finished save.
type savedMsg struct {
	path string
	err  error
}

// EditorModel is the bubbletea model for moving icons in a routed diagram.
// Every move runs as a command; a pass started before a later move is
// discarded when it finishes.
type EditorModel struct {
	Manager   *session.Manager
	SessionID string
	Path      string

	Routed *diagram.Routed
	Nodes  []string
	Cursor int
	Step   float64

	status string
	err    error
	ctx    context.Context
}

// NewEditorModel creates an editor over an open session.
func NewEditorModel(ctx context.Context, m *session.Manager, s *session.Session, path string) EditorModel {
	return EditorModel{
		Manager:   m,
		SessionID: s.ID,
		Path:      path,
		Routed:    s.Routed,
		Nodes:     s.Diagram.NodeIDs(),
		Step:      defaultStep,
		ctx:       ctx,
	}
}

// Selected returns the ID of the selected node, or "" for an empty diagram.
func (m EditorModel) Selected() string {
	if len(m.Nodes) == 0 {
		return ""
	}
	return m.Nodes[m.Cursor]
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if len(m.Nodes) > 0 {
				m.Cursor = (m.Cursor + 1) % len(m.Nodes)
			}
		case "shift+tab":
			if len(m.Nodes) > 0 {
				m.Cursor = (m.Cursor + len(m.Nodes) - 1) % len(m.Nodes)
			}
		case "left", "h":
			return m, m.move(-m.Step, 0)
		case "right", "l":
			return m, m.move(m.Step, 0)
		case "up", "k":
			return m, m.move(0, -m.Step)
		case "down", "j":
			return m, m.move(0, m.Step)
		case "+", "=":
			m.Step = min(m.Step*2, maxStep)
			m.status = fmt.Sprintf("step %gpx", m.Step)
		case "-":
			m.Step = max(m.Step/2, minStep)
			m.status = fmt.Sprintf("step %gpx", m.Step)
		case "c":
			m.status, m.err = m.copyRouted()
		case "s":
			return m, m.save()
		}
	case routedMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, errors.ErrCodeSuperseded) {
				m.err = msg.err
			}
			return m, nil
		}
		// Commands run concurrently, so an older pass can land last.
		if m.Routed != nil && msg.routed.Generation < m.Routed.Generation {
			return m, nil
		}
		m.Routed = msg.routed
		m.err = nil
		m.status = fmt.Sprintf("pass %d · %d crossings", msg.routed.Generation, msg.routed.Stats.Crossings)
	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "saved " + msg.path
	}
	return m, nil
}

// move returns a command that moves the selected node and re-routes.
func (m EditorModel) move(dx, dy float64) tea.Cmd {
	id := m.Selected()
	if id == "" {
		return nil
	}
	mgr, ctx, sid := m.Manager, m.ctx, m.SessionID
	return func() tea.Msg {
		r, err := mgr.Move(ctx, sid, id, dx, dy)
		return routedMsg{routed: r, err: err}
	}
}

func (m EditorModel) save() tea.Cmd {
	mgr, ctx, sid, path := m.Manager, m.ctx, m.SessionID, m.Path
	return func() tea.Msg {
		s, err := mgr.Get(ctx, sid)
		if err != nil {
			return savedMsg{err: err}
		}
		s.Diagram.Touch()
		return savedMsg{path: path, err: diagram.WriteDiagramFile(s.Diagram, path)}
	}
}

func (m EditorModel) copyRouted() (string, error) {
	var b strings.Builder
	if err := diagram.WriteRouted(m.Routed, &b); err != nil {
		return "", err
	}
	if err := clipboard.WriteAll(b.String()); err != nil {
		return "", fmt.Errorf("copy to clipboard: %w", err)
	}
	return "copied routed JSON", nil
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := "Edit Diagram"
	if m.Routed != nil && m.Routed.Diagram.Meta.Title != "" {
		title = m.Routed.Diagram.Meta.Title
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("  ")
	b.WriteString(editorNodeStyle.Render(m.Selected()))
	b.WriteString("\n")
	b.WriteString(editorHelpStyle.Render("tab select  ←↑↓→ move  +/- step  s save  c copy  q quit"))
	b.WriteString("\n\n")

	if m.Routed != nil {
		b.WriteString(render.RenderASCII(m.Routed, render.WithMarked(m.Selected())).String())
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(editorErrorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(editorStatusStyle.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}
