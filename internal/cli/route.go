package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/awscfgdiagram/orthoroute/pkg/pipeline"
	"github.com/awscfgdiagram/orthoroute/pkg/render"
)

// routedSuffix replaces the input extension on routed output files.
const routedSuffix = ".routed.json"

type routeOpts struct {
	routing routingFlags
	outDir  string
	stdout  bool
	noCache bool
	refresh bool
}

// routeCommand creates the route command.
func (c *CLI) routeCommand() *cobra.Command {
	opts := &routeOpts{}

	cmd := &cobra.Command{
		Use:   "route [file|dir]...",
		Short: "Route the connectors of one or more diagrams",
		Long: `Route computes orthogonal connector paths for every edge of each diagram.

Directories contribute their .json, .yaml and .yml files. Diagrams are routed
concurrently; each result is written next to its input as <name>.routed.json,
or under --out when given.`,
		Example: `  orthoroute route prod.json
  orthoroute route diagrams/ --out routed/
  orthoroute route prod.json --stdout --port-gap 16`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd, args, opts)
		},
	}

	opts.routing.register(cmd)
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "output directory")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write a single routed diagram to stdout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runRoute(cmd *cobra.Command, args []string, opts *routeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	routing, err := opts.routing.apply(c.Config.Routing)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	jobs, err := pipeline.LoadJobs(args)
	if err != nil {
		return err
	}
	prog.step("loaded diagrams")
	if opts.stdout && len(jobs) != 1 {
		return fmt.Errorf("--stdout needs exactly one diagram, got %d", len(jobs))
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Routing %d diagram(s)...", len(jobs)))
	if !opts.stdout {
		spinner.Start()
	}
	results, err := runner.RunBatch(ctx, jobs, pipeline.Options{
		Routing: routing,
		Formats: []string{render.FormatJSON},
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		spinner.StopWithError("Routing stopped")
		return err
	}
	spinner.Stop()
	prog.step("routed")

	if opts.stdout {
		r := results[0]
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Path, r.Err)
		}
		_, err := cmd.OutOrStdout().Write(r.Result.Artifacts[render.FormatJSON])
		return err
	}

	failed, last := 0, ""
	for _, r := range results {
		if r.Err != nil {
			failed++
			printError("%s: %v", r.Path, r.Err)
			continue
		}
		out := routedPath(r.Path, opts.outDir)
		if err := writeFile(out, r.Result.Artifacts[render.FormatJSON]); err != nil {
			return err
		}
		printSuccess("Routed %s", r.Path)
		printRouteSummary(summarize(r.Result))
		printFile(out)
		last = out
	}
	prog.done(fmt.Sprintf("Routed %d diagram(s)", len(results)-failed))
	if last != "" {
		printNextStep("Render it", "orthoroute render "+last)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d diagrams failed", failed, len(results))
	}
	return nil
}

// routedPath returns where the routed form of input is written.
func routedPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + routedSuffix
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}

// writeFile writes data, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func summarize(res *pipeline.Result) routeSummary {
	rd := res.Routed
	return routeSummary{
		Nodes:     res.Stats.Nodes,
		Routes:    rd.Stats.Routed,
		Crossings: rd.Stats.Crossings,
		Dangling:  len(rd.Dangling),
		Cached:    res.CacheInfo.RoutedHit,
	}
}
