package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitesmith-ai/sitesmith/internal/admin"
	"github.com/sitesmith-ai/sitesmith/internal/cache"
	"github.com/sitesmith-ai/sitesmith/internal/config"
	"github.com/sitesmith-ai/sitesmith/internal/logging"
	"github.com/sitesmith-ai/sitesmith/internal/provider"
	"github.com/sitesmith-ai/sitesmith/internal/server"
	"github.com/sitesmith-ai/sitesmith/internal/storage"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SiteSmith HTTP server",
	Long: `Start SiteSmith as a server that exposes the generation API and
streams progress over SSE.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Working directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(serveDir)
	if err != nil {
		return err
	}

	log := logging.Component("serve")
	log.Info().Str("version", Version).Str("directory", workDir).Msg("Starting SiteSmith server")

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		return err
	}
	if appConfig.LogLevel != "" && !cmd.Flags().Changed("log-level") {
		logging.Init(logging.Config{Level: logging.ParseLevel(appConfig.LogLevel), Pretty: prettyLogs})
	}

	store := storage.New(paths.StoragePath())

	ctx := context.Background()
	providerReg, err := provider.InitializeProviders(ctx, appConfig)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize some providers")
	}

	responseCache := cache.FromConfig(ctx, appConfig.Cache)

	var forwarder *admin.Forwarder
	if appConfig.Admin != nil {
		forwarder = admin.NewForwarder(appConfig.Admin.Endpoint)
	}

	serverConfig := server.DefaultConfig()
	serverConfig.Port = servePort

	srv := server.New(serverConfig, appConfig, store, providerReg, responseCache, forwarder)

	go func() {
		log.Info().Int("port", servePort).Msg("Server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
	return nil
}
