package storage

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/internal/storage/gormstore"
	"github.com/psbattle/engine/internal/storage/memory"
	"github.com/psbattle/engine/internal/storage/websocket"
)

var (
	_ Backend    = Nop{}
	_ Backend    = (*memory.Backend)(nil)
	_ Exportable = (*memory.Backend)(nil)
	_ Backend    = (*gormstore.Backend)(nil)
	_ Backend    = (*websocket.Backend)(nil)
)

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		check   func(t *testing.T, b Backend)
		wantErr bool
	}{
		{
			name: "memory",
			cfg:  config.StorageConfig{Type: "memory", Memory: config.MemoryConfig{OutputDir: t.TempDir()}},
			check: func(t *testing.T, b Backend) {
				assert.IsType(t, &memory.Backend{}, b)
			},
		},
		{
			name: "memory mixed case",
			cfg:  config.StorageConfig{Type: "Memory"},
			check: func(t *testing.T, b Backend) {
				assert.IsType(t, &memory.Backend{}, b)
			},
		},
		{
			name: "none",
			cfg:  config.StorageConfig{Type: "none"},
			check: func(t *testing.T, b Backend) {
				assert.Equal(t, Nop{}, b)
			},
		},
		{
			name: "sqlite",
			cfg:  config.StorageConfig{Type: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "b.db")}},
			check: func(t *testing.T, b Backend) {
				require.IsType(t, &dbBackend{}, b)
				require.NoError(t, b.Init())
				assert.NoError(t, b.Close())
			},
		},
		{
			name: "stream",
			cfg:  config.StorageConfig{Type: "stream", Stream: config.StreamConfig{URL: "ws://localhost:5000/api/v1/stream"}},
			check: func(t *testing.T, b Backend) {
				assert.IsType(t, &websocket.Backend{}, b)
			},
		},
		{
			name:    "unknown",
			cfg:     config.StorageConfig{Type: "cassandra"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBackend(tt.cfg, zerolog.Nop())
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown storage type")
				return
			}
			require.NoError(t, err)
			tt.check(t, b)
		})
	}
}
