package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/config"
)

func newServeCommand(opts *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only migration status API",
		Long: `Serve exposes the migration status and history over HTTP. The API never
mutates the store; migrate and rollback stay command line operations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := opts.buildEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.Close(context.Background())

			if port > 0 {
				env.cfg.Server.Port = port
			}
			if env.cfg.Environment == config.Production {
				gin.SetMode(gin.ReleaseMode)
			}

			router := gin.New()
			routes.SetupMiddlewares(router, env.logger)
			routes.SetupRoutes(router, handler.NewMigrationHandler(env.migrator, env.logger))

			server := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", env.cfg.Server.Host, env.cfg.Server.Port),
				Handler:           router,
				ReadTimeout:       env.cfg.Server.ReadTimeout,
				WriteTimeout:      env.cfg.Server.WriteTimeout,
				ReadHeaderTimeout: env.cfg.Server.ReadHeaderTimeout,
				IdleTimeout:       env.cfg.Server.IdleTimeout,
			}

			serveErr := make(chan error, 1)
			go func() {
				env.logger.Info("Starting status server", map[string]any{
					"addr": server.Addr,
					"env":  env.cfg.Environment,
				})
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serveErr <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serveErr:
				return err
			case <-quit:
			case <-ctx.Done():
			}

			env.logger.Info("Shutting down status server", nil)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), env.cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				env.logger.Error("Server forced to shutdown", map[string]any{
					"error": err.Error(),
				})
				return err
			}

			env.logger.Info("Server exited gracefully", nil)
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port for the status server (overrides configuration)")
	return cmd
}
