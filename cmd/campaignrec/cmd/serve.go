package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"campaign-reconciliation-service/cmd/campaignrec/config"
	"campaign-reconciliation-service/internal/clients/meta"
	"campaign-reconciliation-service/internal/clients/trendyol"
	"campaign-reconciliation-service/internal/reconciler"
	"campaign-reconciliation-service/internal/server"
	"campaign-reconciliation-service/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation HTTP API",
	Long: `Serve starts the HTTP API that powers the dashboard: login, proxy
endpoints for both platforms, and the combined reconciliation view.

The API is guarded by a session token obtained from POST /api/auth/login
with the configured admin credentials. Prometheus metrics are exposed
on /metrics.

Examples:
  campaignrec serve --addr :3001 --jwt-secret change-me --admin-password s3cret
  CAMPAIGNREC_JWT_SECRET=change-me campaignrec serve`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":3001", "listen address")
	serveCmd.Flags().String("jwt-secret", "", "secret for signing session tokens (required)")
	serveCmd.Flags().String("admin-username", "admin", "dashboard login username")
	serveCmd.Flags().String("admin-password", "", "dashboard login password (required)")
	serveCmd.Flags().Duration("token-ttl", 0, "session token lifetime (default 24h)")
	serveCmd.Flags().Float64("candidate-floor", 30, "minimum similarity for a match candidate (0-100)")
	serveCmd.Flags().Float64("accept-threshold", 50, "minimum confidence to accept a name match (0-100)")

	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("jwt-secret", serveCmd.Flags().Lookup("jwt-secret"))
	viper.BindPFlag("admin-username", serveCmd.Flags().Lookup("admin-username"))
	viper.BindPFlag("admin-password", serveCmd.Flags().Lookup("admin-password"))
	viper.BindPFlag("token-ttl", serveCmd.Flags().Lookup("token-ttl"))
	viper.BindPFlag("candidate-floor", serveCmd.Flags().Lookup("candidate-floor"))
	viper.BindPFlag("accept-threshold", serveCmd.Flags().Lookup("accept-threshold"))
}

func runServe(cmd *cobra.Command, args []string) error {
	if log, err := logger.NewLogger(logger.ServerConfig()); err == nil && !viper.GetBool("verbose") {
		logger.SetGlobalLogger(log)
	}

	matchingConfig := config.CreateMatchingConfig(
		viper.GetFloat64("candidate-floor"),
		viper.GetFloat64("accept-threshold"),
	)
	if err := matchingConfig.Validate(); err != nil {
		return err
	}

	engine := reconciler.NewEngine(matchingConfig)

	srv, err := server.NewServer(
		config.CreateServerConfig(),
		meta.NewClient(nil),
		trendyol.NewClient(nil),
		engine,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
