package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/awscfgdiagram/orthoroute/pkg/buildinfo"
	"github.com/awscfgdiagram/orthoroute/pkg/cache"
	"github.com/awscfgdiagram/orthoroute/pkg/config"
	"github.com/awscfgdiagram/orthoroute/pkg/pipeline"
	"github.com/awscfgdiagram/orthoroute/pkg/render"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "orthoroute draws orthogonal connectors between diagram icons",
		Long: `orthoroute routes the connectors of AWS configuration diagrams.

Every connector leaves and enters its icons perpendicular to a side, uses only
horizontal and vertical segments, and avoids the other icons where it can.
Routed diagrams render to SVG, PNG, PDF, DOT and text.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/orthoroute/config.toml)")

	root.AddCommand(c.routeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys are scoped by
// version so a new renderer never serves artifacts cached by an old one.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.Get().Version+":")
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	r.ArtifactTTL = c.Config.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: appName + ":",
		})
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/orthoroute/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// routingFlags holds the router tunables shared by route, render and
// check. Flags left unset keep the values from the config file.
type routingFlags struct {
	stemLen, portGap, margin float64
	noCenter, noAlign        bool
}

func (f *routingFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.stemLen, "stem", 0, "stem length in pixels (default from config)")
	cmd.Flags().Float64Var(&f.portGap, "port-gap", 0, "minimum gap between ports on one side")
	cmd.Flags().Float64Var(&f.margin, "margin", 0, "obstacle margin in pixels")
	cmd.Flags().BoolVar(&f.noCenter, "no-center", false, "skip port re-centering")
	cmd.Flags().BoolVar(&f.noAlign, "no-align", false, "skip elbow alignment")
}

// apply layers the flags over base.
func (f *routingFlags) apply(base route.Options) (route.Options, error) {
	if f.stemLen != 0 {
		base.StemLen = f.stemLen
	}
	if f.portGap != 0 {
		base.PortGap = f.portGap
	}
	if f.margin != 0 {
		base.ObstacleMargin = f.margin
	}
	if f.noCenter {
		base.CenterPorts = false
	}
	if f.noAlign {
		base.AlignElbows = false
	}
	if err := base.Validate(); err != nil {
		return base, fmt.Errorf("routing options: %w", err)
	}
	return base, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// outputPath derives the file for one format. A single format with an
// explicit output uses it verbatim; otherwise output (or the input name) is
// a base path and the format becomes the extension. JSON output gets the
// routed suffix so it never replaces its input.
func outputPath(input, output, format string, single bool) string {
	if output != "" && single {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	if format == render.FormatJSON {
		return base + routedSuffix
	}
	return base + "." + format
}
