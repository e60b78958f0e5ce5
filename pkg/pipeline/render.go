package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/render"
)

// Render produces one artifact per requested format.
func Render(ctx context.Context, rd *diagram.Routed, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, rd, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// RenderFormat produces a single artifact.
func RenderFormat(ctx context.Context, rd *diagram.Routed, format string, opts Options) ([]byte, error) {
	switch format {
	case render.FormatSVG:
		return renderSVG(ctx, rd, opts)
	case render.FormatPNG:
		return render.RenderPNG(rd, render.WithScale(opts.Scale))
	case render.FormatPDF:
		svg, err := renderSVG(ctx, rd, opts)
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	case render.FormatDOT:
		return []byte(render.ToDOT(rd)), nil
	case render.FormatJSON:
		var buf bytes.Buffer
		if err := diagram.WriteRouted(rd, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case render.FormatASCII:
		return []byte(render.RenderASCII(rd).String()), nil
	default:
		return nil, errors.ValidateFormat(format, render.Formats...)
	}
}

// renderSVG draws rd with the engine opts selects.
func renderSVG(ctx context.Context, rd *diagram.Routed, opts Options) ([]byte, error) {
	if opts.Engine == render.EngineGraphviz {
		return render.RenderDOTSVG(ctx, render.ToDOT(rd))
	}
	return render.RenderSVG(rd, svgOptions(opts)...), nil
}

func svgOptions(opts Options) []render.SVGOption {
	var out []render.SVGOption
	if opts.NoLabels {
		out = append(out, render.WithoutLabels())
	}
	if opts.EdgeLabels {
		out = append(out, render.WithEdgeLabels())
	}
	return out
}
