package backend

import (
	"fmt"
	"log/slog"

	"soquy/internal/amqp"
	"soquy/internal/store"
)

// Factory creates backends from settings.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create wires the snapshot store for the configured type plus an optional
// AMQP client. AMQP failures are non-fatal: the ledger works without change
// events.
func (f *Factory) Create(settings Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	result, err := f.createStore(settings)
	if err != nil {
		return nil, err
	}

	if settings.AMQPURL != "" {
		client, err := amqp.NewClient(settings.AMQPURL, settings.AMQPExchange, settings.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", settings.AMQPExchange,
				"queue", settings.AMQPQueue)
			result.Events = client
			storeCleanup := result.Cleanup
			result.Cleanup = func() error {
				if err := client.Close(); err != nil {
					storeCleanup()
					return fmt.Errorf("close amqp: %w", err)
				}
				return storeCleanup()
			}
		}
	}

	return result, nil
}

func (f *Factory) createStore(settings Settings) (*Result, error) {
	noop := func() error { return nil }

	switch settings.Type {
	case SQLiteBackend:
		st, err := store.NewSQLite(settings.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", settings.SQLiteDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	case FileBackend:
		st, err := store.NewFile(settings.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		f.logger.Info("Initialized file backend", "snapshot_path", settings.SnapshotPath)
		return &Result{Store: st, Cleanup: noop}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{Store: store.NewMemory(nil), Cleanup: noop}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", settings.Type)
	}
}
