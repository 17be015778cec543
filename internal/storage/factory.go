package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/internal/database"
	"github.com/psbattle/engine/internal/storage/gormstore"
	"github.com/psbattle/engine/internal/storage/memory"
	"github.com/psbattle/engine/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration. The backend
// is not initialized.
func NewBackend(cfg config.StorageConfig, logger zerolog.Logger) (Backend, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite", "postgres":
		m := database.NewManager(cfg, logger)
		if err := m.Connect(); err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		if err := m.Setup(); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("error setting up database: %w", err)
		}
		return &dbBackend{
			Backend: gormstore.New(gormstore.Dependencies{DB: m.DB, Logger: logger}),
			manager: m,
		}, nil
	case "stream":
		if cfg.Stream.URL == "" {
			return nil, errors.New("stream storage needs storage.stream.url")
		}
		return websocket.New(websocket.Config{URL: cfg.Stream.URL, Secret: cfg.Stream.Secret}, logger), nil
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// dbBackend closes the connection pool after the gorm backend has flushed.
type dbBackend struct {
	*gormstore.Backend
	manager *database.Manager
}

func (b *dbBackend) Close() error {
	err := b.Backend.Close()
	if cerr := b.manager.Close(); err == nil {
		err = cerr
	}
	return err
}
