// soquy-events tails the ledger change queue and logs each mutation. It is
// the reference consumer for the events exchange; anything mirroring the
// ledger elsewhere starts from this loop.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"soquy/internal/amqp"
	"soquy/internal/config"
	"soquy/internal/log"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the events worker")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		return client.ConsumeChanges(gctx, func(msg *amqp.ChangeMessage) error {
			logger.Info("Ledger change",
				log.FieldAction, msg.Action,
				log.FieldTransactionID, msg.ID,
				log.FieldCount, msg.Count,
				"timestamp", msg.Timestamp)
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Events worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Events worker stopped gracefully")
}
