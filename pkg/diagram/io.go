package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/awscfgdiagram/orthoroute/pkg/errors"
)

// =============================================================================
// Diagram Serialization API
// =============================================================================

// MarshalDiagram converts a diagram to indented JSON bytes.
// Map keys are emitted in sorted order, so output is deterministic.
func MarshalDiagram(d *Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDiagram decodes and validates a JSON diagram.
func UnmarshalDiagram(data []byte) (*Diagram, error) {
	return ReadDiagram(bytes.NewReader(data))
}

// WriteDiagram writes a diagram as JSON to an io.Writer.
func WriteDiagram(d *Diagram, w io.Writer) error {
	return writeJSON(d, w)
}

// WriteDiagramFile writes a diagram to a JSON file.
// The file is created with 0644 permissions.
func WriteDiagramFile(d *Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeJSON(d, f)
}

// ReadDiagram decodes a JSON diagram from an io.Reader.
// Returns validation errors for malformed documents.
func ReadDiagram(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	return finish(&d)
}

// ReadDiagramYAML decodes a YAML diagram from an io.Reader.
func ReadDiagramYAML(r io.Reader) (*Diagram, error) {
	var d Diagram
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	return finish(&d)
}

// ReadDiagramFile reads a diagram file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func ReadDiagramFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadDiagramYAML(f)
	default:
		return ReadDiagram(f)
	}
}

// =============================================================================
// Routed Serialization API
// =============================================================================

// WriteRouted writes a routed document as indented JSON.
func WriteRouted(r *Routed, w io.Writer) error {
	return writeJSON(r, w)
}

// WriteRoutedFile writes a routed document to a JSON file.
func WriteRoutedFile(r *Routed, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeJSON(r, f)
}

// ReadRouted decodes a routed document. The embedded diagram is validated.
func ReadRouted(r io.Reader) (*Routed, error) {
	var out Routed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode routed diagram")
	}
	if out.Diagram == nil {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "routed document has no diagram")
	}
	d, err := finish(out.Diagram)
	if err != nil {
		return nil, err
	}
	out.Diagram = d
	return &out, nil
}

// ReadRoutedFile reads a routed document from a JSON file.
func ReadRoutedFile(path string) (*Routed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRouted(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// finish fills IDs omitted in hand-written files from their map keys and
// validates the result.
func finish(d *Diagram) (*Diagram, error) {
	if d.Nodes == nil {
		d.Nodes = map[string]Node{}
	}
	if d.Edges == nil {
		d.Edges = map[string]Edge{}
	}
	for id, n := range d.Nodes {
		if n.ID == "" {
			n.ID = id
			d.Nodes[id] = n
		}
	}
	for id, e := range d.Edges {
		if e.ID == "" {
			e.ID = id
		}
		if e.Type == "" {
			e.Type = EdgeConnection
		}
		d.Edges[id] = e
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
