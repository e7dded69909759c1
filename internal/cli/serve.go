package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaviz/internal/api"
	"github.com/matzehuels/schemaviz/pkg/cache"
	"github.com/matzehuels/schemaviz/pkg/pipeline"
)

// serveKeyPrefix keeps API artifacts apart from CLI artifacts in a shared cache.
const serveKeyPrefix = "serve:"

// serveCommand starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisURL  string
		noCache   bool
		bodyLimit int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compile and render API over HTTP",
		Long: `Serve the compile and render API over HTTP.

Endpoints:
  GET  /healthz
  POST /api/v1/compile?type=yaml[&focus=&depth=]
  POST /api/v1/render?type=yaml&format=svg[&rankdir=&fontsize=&focus=&depth=]

Artifacts are cached in Redis when --redis-url (or cache.redis_url, or
SCHEMAVIZ_REDIS_URL) is set, otherwise in the local cache directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			if redisURL == "" {
				redisURL = c.cfg.Cache.RedisURL
			}
			return c.runServe(cmd.Context(), addr, redisURL, noCache, bodyLimit)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for the shared artifact cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().Int64Var(&bodyLimit, "body-limit", api.DefaultBodyLimit, "maximum request body size in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisURL string, noCache bool, bodyLimit int64) error {
	store, err := c.serveCache(ctx, redisURL, noCache)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(cache.NewDefaultKeyer(), serveKeyPrefix), c.Logger)
	defer runner.Close()

	printSuccess("Serving on %s", addr)
	printNextStep("Try", fmt.Sprintf("curl --data-binary @schema.yml 'http://%s/api/v1/render?type=yaml'", dialAddr(addr)))

	srv := api.New(runner, c.Logger, api.WithBodyLimit(bodyLimit))
	return srv.ListenAndServe(ctx, addr)
}

// serveCache picks Redis when configured and falls back to the CLI cache.
func (c *CLI) serveCache(ctx context.Context, redisURL string, noCache bool) (cache.Cache, error) {
	if noCache || c.cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using redis cache")
		return rc, nil
	}
	return c.newCache(false)
}

// dialAddr turns a listen address such as ":8080" into one a client can use.
func dialAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
