package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridstudio/internal/config"
	"github.com/matzehuels/gridstudio/internal/server"
	"github.com/matzehuels/gridstudio/pkg/observability"
	"github.com/matzehuels/gridstudio/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for browser editors",
		Long: `Run the session API. Sessions are kept in the configured store
(memory, file or mongo) and exports share the configured image cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	tracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return err
	}
	defer tracing.Shutdown(context.Background())

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetRenderHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	st, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		st.Close()
		return err
	}

	srv := server.New(server.Options{
		Store:        st,
		Runner:       runner,
		Render:       cfg.PipelineOptions(),
		Grid:         cfg.Grid,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		MaxDimension: cfg.Server.MaxDimension,
		Logger:       c.Logger,
	})
	defer srv.Close()

	c.Logger.Info("starting server", "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	return server.ListenAndServe(ctx, cfg.Server.Addr, srv, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, c.Logger)
}

// newStore opens the configured session store.
func newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.MongoURI,
			Database:   cfg.Store.Database,
			Collection: cfg.Store.Collection,
		})
	case config.BackendFile:
		return store.NewFileStore(cfg.Store.Dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
