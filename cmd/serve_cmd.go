package cmd

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supabase/siws/internal/api"
	"github.com/supabase/siws/internal/conf"
	"github.com/supabase/siws/internal/observability"
	"github.com/supabase/siws/internal/utilities"
)

var serveCmd = cobra.Command{
	Use:  "serve",
	Long: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		serve(cmd.Context())
	},
}

func serve(ctx context.Context) {
	config, err := conf.LoadGlobal(configFile)
	if err != nil {
		logrus.WithError(err).Fatal("unable to load config")
	}

	if err := observability.ConfigureLogging(&config.Logging); err != nil {
		logrus.WithError(err).Error("unable to configure logging")
	}

	if err := observability.ConfigureMetrics(ctx, &config.Metrics); err != nil {
		logrus.WithError(err).Error("unable to configure metrics")
	}

	if err := utilities.InitVersionMetrics(ctx); err != nil {
		logrus.WithError(err).Error("unable to initialize version metrics")
	}

	a := api.NewAPIWithVersion(ctx, config, utilities.Version)

	addr := net.JoinHostPort(config.API.Host, config.API.Port)
	logrus.WithFields(logrus.Fields{
		"domain":      config.SIWS.Domain,
		"parser_mode": config.SIWS.ParserMode.String(),
	}).Infof("SIWS API started on: %s", addr)

	a.ListenAndServe(ctx, addr)
}
