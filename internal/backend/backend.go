// Package backend wires a snapshot store and optional AMQP client out of
// configuration, with a cleanup hook for whatever resources were opened.
package backend

import (
	"fmt"

	"soquy/internal/amqp"
	"soquy/internal/config"
	"soquy/internal/store"
)

// Type represents the persistence backend kind.
type Type string

const (
	MemoryBackend Type = "memory"
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the wired store, the optional event client, and a cleanup
// function (never nil).
type Result struct {
	Store   store.Store
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Settings holds everything needed to create a backend.
type Settings struct {
	Type Type

	SnapshotPath string
	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend settings.
func FromAppConfig(appConfig *config.Config) (Settings, error) {
	if appConfig == nil {
		return Settings{}, fmt.Errorf("app config is nil")
	}

	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Settings{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Settings{
		Type:         t,
		SnapshotPath: appConfig.SnapshotPath,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend settings.
func (s Settings) Validate() error {
	if !s.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", s.Type)
	}

	switch s.Type {
	case FileBackend:
		if s.SnapshotPath == "" {
			return fmt.Errorf("snapshot path is required for file backend")
		}
	case SQLiteBackend:
		if s.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
		// nothing to validate
	}
	return nil
}
