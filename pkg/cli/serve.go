package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"doc-narrator/pkg/config"
	"doc-narrator/pkg/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the narration HTTP API",
	Long: `Serve starts the HTTP API used by the mobile client:

  POST /process_content   start a job and wait for its result
  GET  /status            current job state
  POST /stop_reading      stop after the sentence being read
  GET  /events?since=N    job progress events
  GET  /runs?limit=N      run history (when enabled)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	var runs server.RunLister
	if a.store != nil {
		runs = a.store
	}
	return server.New(ctx, a.manager, runs).ListenAndServe(ctx, cfg.Server.Addr)
}
