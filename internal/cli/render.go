package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/awscfgdiagram/orthoroute/pkg/diagram"
	"github.com/awscfgdiagram/orthoroute/pkg/pipeline"
	"github.com/awscfgdiagram/orthoroute/pkg/render"
)

type renderOpts struct {
	routing    routingFlags
	formats    string
	output     string
	scale      float64
	edgeLabels bool
	engine     string
	noLabels   bool
	noCache    bool
	refresh    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a diagram with routed connectors",
		Long: `Render routes a diagram and writes it in one or more formats.

The input may be a diagram or an already routed diagram (*.routed.json), in
which case the stored routes are drawn as they are.`,
		Example: `  orthoroute render prod.json
  orthoroute render prod.json -f svg,png -o out/prod
  orthoroute render prod.routed.json -f txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	opts.routing.register(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: svg, png, pdf, dot, json, txt (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG pixel ratio")
	cmd.Flags().BoolVar(&opts.edgeLabels, "edge-labels", false, "draw connector labels")
	cmd.Flags().StringVar(&opts.engine, "engine", render.EngineNative, "svg and pdf engine: "+strings.Join(render.Engines, ", "))
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit icon labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	routing, err := opts.routing.apply(c.Config.Routing)
	if err != nil {
		return err
	}
	popts := pipeline.Options{
		Routing:    routing,
		Formats:    parseFormats(opts.formats),
		Scale:      opts.scale,
		EdgeLabels: opts.edgeLabels,
		Engine:     opts.engine,
		NoLabels:   opts.noLabels,
		Refresh:    opts.refresh,
		Logger:     logger,
	}
	if err := popts.Validate(); err != nil {
		return err
	}

	prog := newProgress(logger)
	var artifacts map[string][]byte
	if isRouted(input) {
		rd, err := diagram.ReadRoutedFile(input)
		if err != nil {
			return err
		}
		if artifacts, err = pipeline.Render(ctx, rd, popts); err != nil {
			return err
		}
	} else {
		d, err := diagram.ReadDiagramFile(input)
		if err != nil {
			return err
		}
		runner, err := c.newRunner(ctx, opts.noCache)
		if err != nil {
			return err
		}
		defer runner.Close()

		spinner := newSpinner(ctx, "Routing and rendering...")
		spinner.Start()
		result, err := runner.Execute(ctx, d, popts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.StopWithSuccess("Rendered %s", input)
		artifacts = result.Artifacts
		sum := summarize(result)
		sum.Cached = result.CacheInfo.RenderHit
		printRouteSummary(sum)
	}

	paths, err := writeArtifacts(input, opts.output, popts.Formats, artifacts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.Join(popts.Formats, ", ")))
	return nil
}

// writeArtifacts writes one file per format and returns the paths in
// format order.
func writeArtifacts(input, output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	input = strings.TrimSuffix(input, routedSuffix)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return paths, fmt.Errorf("no %s output", f)
		}
		p := outputPath(input, output, f, len(formats) == 1)
		if err := writeFile(p, data); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func isRouted(path string) bool {
	return strings.HasSuffix(filepath.Base(path), routedSuffix)
}
