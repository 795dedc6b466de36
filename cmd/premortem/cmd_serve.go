package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sharedcode/premortem/restapi"
)

var serveFlags struct {
	address string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API",
	Long: `Serves the analysis and admission endpoints under /api/v1 and the swagger UI
under /swagger/index.html. Requests need an Okta bearer token unless
PREMORTEM_ENV=DEV; PREMORTEM_ENV=QA also accepts PREMORTEM_QA_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.address, "address", "", "Listen address overriding server.address")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, gt, err := buildService(ctx, cfg, "")
	if err != nil {
		return err
	}
	srv, err := restapi.New(svc, gt, restapi.WithBaseURL(cfg.Server.BaseURL))
	if err != nil {
		return err
	}
	address := cfg.Server.Address
	if serveFlags.address != "" {
		address = serveFlags.address
	}
	return srv.Run(ctx, address)
}
