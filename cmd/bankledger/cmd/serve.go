package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"bank-statement-ledger/cmd/bankledger/config"
	"bank-statement-ledger/internal/api"
	"bank-statement-ledger/internal/pipeline"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the statement processing HTTP API",
	Long: `Serve exposes the processing pipeline over HTTP.

Endpoints:
  POST /v1/statements   process a statement (JSON body: text, bank)
  GET  /v1/categories   list the configured categories
  POST /v1/categories   add a custom category
  GET  /healthz         health check

Example:
  bankledger serve --addr :8080`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	serveAddr = viper.GetString("addr")

	pipelineConfig, err := config.CreatePipelineConfig(config.PipelineFlags{
		Workers:           4,
		MergeWrappedLines: true,
		NarrationStyle:    "brief",
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline config: %w", err)
	}

	service, err := pipeline.New(pipelineConfig)
	if err != nil {
		return fmt.Errorf("failed to create pipeline service: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(service)
	return server.ListenAndServe(ctx, serveAddr)
}
