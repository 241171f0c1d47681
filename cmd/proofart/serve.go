package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/service"
	"github.com/vocdoni/proof-artifacts/storage"
	"go.vocdoni.io/dvote/db/metadb"
)

var serveFlags struct {
	host  string
	port  int
	dbDir string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stored artifacts over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		database, err := metadb.New(config.DefaultDBType, serveFlags.dbDir)
		if err != nil {
			return fmt.Errorf("could not open database: %w", err)
		}
		stg := storage.New(database)
		defer stg.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		srv := service.NewAPI(stg, serveFlags.host, serveFlags.port)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		srv.Stop()
		log.Infow("shutting down")
		return nil
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&serveFlags.host, "host", config.DefaultAPIHost, "Host of the API server.")
	flags.IntVar(&serveFlags.port, "port", config.DefaultAPIPort, "Port of the API server.")
	flags.StringVar(&serveFlags.dbDir, "db-dir", "", "Directory of the database where the artifacts are stored.")
	_ = serveCmd.MarkFlagRequired("db-dir")
}
