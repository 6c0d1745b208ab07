package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflow API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().Bool("debug-logs", false, "include per-node debug lines in responses")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.debug-logs", serveCmd.Flags().Lookup("debug-logs"))
}

func serve() {
	logger := newLogger()
	defer logger.Sync()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the skillmatch server", zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}
	defer p.close()

	srv := server.New(server.Config{
		Port:          config.Server.Port,
		Version:       version,
		APIURL:        config.APIURL,
		LLMConfigured: p.llmConfigured,
		Gaps:          config.Matching.Config,
		MaxJobs:       config.Matching.MaxJobs,
		RankThreshold: config.Matching.RankThreshold,
		Debug:         config.Server.DebugLogs,
	}, p.engine, logger)

	if err := srv.Start(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}
