package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/headhunter"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :3000)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-interviewer server", zap.String("version", version))

	service, err := newService(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the interview service", zap.Error(err))
	}

	srv := server.New(service, server.Options{
		Listen:       config.Server.Listen,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		Vacancies:    headhunter.New(logger.Named("headhunter"), ""),
	}, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}

	logger.Info("server stopped", zap.Int("active_sessions", service.ActiveSessions()))
}
