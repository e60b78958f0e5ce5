package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/session"
)

func newTestEditor(t *testing.T) EditorModel {
	t.Helper()
	d, err := diagram.UnmarshalDiagram([]byte(twoIconsJSON))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	mgr := session.NewManager(session.NewMemoryStore(), nil, nil)
	s, err := mgr.Open(ctx, "two", d)
	if err != nil {
		t.Fatal(err)
	}
	return NewEditorModel(ctx, mgr, s, "")
}

func press(m EditorModel, k tea.KeyMsg) (EditorModel, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(EditorModel), cmd
}

func TestEditorModel_Select(t *testing.T) {
	m := newTestEditor(t)
	if m.Selected() != "a" {
		t.Fatalf("Selected() = %q, want a", m.Selected())
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Selected() != "b" {
		t.Errorf("after tab Selected() = %q, want b", m.Selected())
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Selected() != "a" {
		t.Errorf("tab should wrap, got %q", m.Selected())
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Selected() != "b" {
		t.Errorf("after shift+tab Selected() = %q, want b", m.Selected())
	}
}

func TestEditorModel_MoveReroutes(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyDown})
	if cmd == nil {
		t.Fatal("move returned no command")
	}
	next, _ := m.Update(cmd())
	m = next.(EditorModel)

	if m.err != nil {
		t.Fatalf("move error: %v", m.err)
	}
	if got := m.Routed.Diagram.Nodes["b"].Position.Y; got != defaultStep {
		t.Errorf("b.y = %g, want %g", got, defaultStep)
	}
	if m.Routed.Generation != 2 {
		t.Errorf("Generation = %d, want 2", m.Routed.Generation)
	}
}

func TestEditorModel_SupersededPassIgnored(t *testing.T) {
	m := newTestEditor(t)
	before := m.Routed

	next, _ := m.Update(routedMsg{err: errors.New(errors.ErrCodeSuperseded, "pass 2 superseded by 3")})
	m = next.(EditorModel)
	if m.err != nil {
		t.Errorf("superseded pass surfaced an error: %v", m.err)
	}
	if m.Routed != before {
		t.Error("superseded pass replaced the routed diagram")
	}
}

func TestEditorModel_StalePassIgnored(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})

	_, first := press(m, tea.KeyMsg{Type: tea.KeyDown})
	_, second := press(m, tea.KeyMsg{Type: tea.KeyDown})
	older, newer := first(), second()

	next, _ := m.Update(newer)
	m = next.(EditorModel)
	next, _ = m.Update(older)
	m = next.(EditorModel)

	if m.Routed.Generation != 3 {
		t.Fatalf("Generation = %d, want 3", m.Routed.Generation)
	}
	if got := m.Routed.Diagram.Nodes["b"].Position.Y; got != 2*defaultStep {
		t.Errorf("b.y = %g, want %g", got, 2*defaultStep)
	}
}

func TestEditorModel_Step(t *testing.T) {
	m := newTestEditor(t)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if m.Step != 2*defaultStep {
		t.Errorf("Step = %g, want %g", m.Step, 2*defaultStep)
	}
	for range 10 {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	}
	if m.Step != minStep {
		t.Errorf("Step = %g, want %g", m.Step, minStep)
	}
}

func TestEditorModel_View(t *testing.T) {
	m := newTestEditor(t)
	v := m.View()
	if v == "" {
		t.Fatal("View() is empty")
	}
	if !strings.Contains(v, "two icons") || !strings.Contains(v, "tab select") {
		t.Errorf("View() missing title or help:\n%s", v)
	}
}
