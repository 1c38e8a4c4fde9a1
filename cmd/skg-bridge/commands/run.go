package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/skg-bridge/errors"
	"github.com/teranos/skg-bridge/internal/bridge"
	"github.com/teranos/skg-bridge/internal/broker"
	"github.com/teranos/skg-bridge/internal/config"
	"github.com/teranos/skg-bridge/internal/graphdb"
	"github.com/teranos/skg-bridge/internal/venue"
	"github.com/teranos/skg-bridge/logger"
)

// RunCmd starts the bridge and blocks until interrupted.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")

		if err := logger.Initialize(jsonLogs, logger.VerbosityToLevel(verbosity)); err != nil {
			return errors.Wrapf(err, "initializing logger")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return errors.Wrapf(err, "loading configuration")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		connectTimeout := time.Duration(cfg.ConnectionTimeoutMS) * time.Millisecond
		queryTimeout := time.Duration(cfg.QueryTimeoutMS) * time.Millisecond

		graph, err := graphdb.Connect(ctx, cfg.MemgraphHost, cfg.MemgraphPort, 5, connectTimeout, queryTimeout)
		if err != nil {
			return errors.Wrapf(err, "connecting to graph store")
		}
		defer graph.Close(context.Background())
		graph.InitPool(ctx, cfg.ConnectionPoolSize)

		brokerClient, err := broker.Connect(ctx, cfg.NATSURL, 5, time.Second)
		if err != nil {
			return errors.Wrapf(err, "connecting to broker")
		}

		b := bridge.New(cfg, graph, brokerClient, venue.NewStaticProvider())

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		runErr := make(chan error, 1)
		go func() { runErr <- b.Run(ctx) }()

		select {
		case <-sigChan:
			logger.Infow("received interrupt, shutting down")
		case err := <-runErr:
			if err != nil {
				logger.Errorw("bridge run loop exited with error", logger.FieldError, err)
			}
		}

		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		b.Shutdown(shutdownCtx)

		return nil
	},
}
