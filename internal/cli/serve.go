package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/awscfgdiagram/orthoroute/pkg/config"
	"github.com/awscfgdiagram/orthoroute/pkg/observability"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
	"github.com/awscfgdiagram/orthoroute/pkg/server"
	"github.com/awscfgdiagram/orthoroute/pkg/session"
	"github.com/awscfgdiagram/orthoroute/pkg/store"
)

// mongoCollection holds diagram documents in the configured database.
const mongoCollection = "diagrams"

type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes routing, rendering, stored diagrams and editing sessions
over HTTP. Backends for the cache and the diagram store come from the
config file.`,
		Example: `  orthoroute serve
  orthoroute serve --addr :9000 -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cfg := c.Config
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	if c.Logger.GetLevel() <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.newStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	router := route.New(cfg.Routing, c.Logger)
	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Routing:      cfg.Routing,
		Runner:       runner,
		Store:        st,
		Sessions:     session.NewManager(session.NewMemoryStore(), router, c.Logger),
		Logger:       c.Logger,
	})

	printInfo("Serving on %s", StyleHighlight.Render("http://"+cfg.Server.Addr))
	printDetail("store: %s  cache: %s", cfg.Store.Backend, cfg.Cache.Backend)
	return srv.ListenAndServe(ctx)
}

// newStore opens the configured diagram store.
func (c *CLI) newStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database, mongoCollection)
	case config.BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := dataDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(d, "diagrams")
		}
		return store.NewFileStore(dir)
	case config.BackendMemory, "":
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// dataDir returns the data directory using XDG standard (~/.local/share/orthoroute/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
