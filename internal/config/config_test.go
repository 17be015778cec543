package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"server": { "url": "ws://localhost:8000/showdown/websocket" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "ws://localhost:8000/showdown/websocket", viper.GetString("server.url"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./psbattlelogs", viper.GetString("logsDir"))
	assert.Equal(t, true, viper.GetBool("server.reconnect"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "psbattle", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("PSBATTLE_STORAGE_TYPE", "sqlite")
	t.Setenv("PSBATTLE_PACING_MAJOR", "3s")

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "sqlite", GetStorageConfig().Type)
	assert.Equal(t, 3*time.Second, PacingConfig().Major)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestPacingConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       string
		wantMinor time.Duration
		wantMajor time.Duration
		wantLoop  bool
	}{
		{"defaults", `{}`, 750 * time.Millisecond, 1500 * time.Millisecond, true},
		{"replay pacing", `{"pacing": {"minor": "100ms", "major": "250ms", "loopToLastTurn": false}}`, 100 * time.Millisecond, 250 * time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(viper.Reset)
			require.NoError(t, Load(writeConfig(t, tt.cfg)))

			p := PacingConfig()
			assert.Equal(t, tt.wantMinor, p.Minor)
			assert.Equal(t, tt.wantMajor, p.Major)
			assert.Equal(t, tt.wantLoop, p.LoopToLastTurn)
		})
	}
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./battles", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, "./battles.db", cfg.SQLite.Path)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=psbattle sslmode=disable", cfg.DB.DSN())
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "SQLite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "path": "/tmp/log.db" }
		}
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "/tmp/log.db", sc.SQLite.Path)
}

func TestGetInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"influx": {"enabled": true, "host": "influx", "protocol": "https"}}`)))

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "https://influx:8086", ic.URL)
	assert.Equal(t, "battles", ic.Bucket)
	assert.Equal(t, time.Second, ic.Interval)
}

func TestGetServerConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	LoadDefaults()

	sc := GetServerConfig()
	assert.Equal(t, "wss://sim3.psim.us/showdown/websocket", sc.URL)
	assert.True(t, sc.Reconnect)
	assert.Equal(t, 2*time.Second, sc.Backoff)

	gc := GetGraylogConfig()
	assert.False(t, gc.Enabled)
}

func TestGetOTelConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	LoadDefaults()

	oc := GetOTelConfig()
	assert.False(t, oc.Enabled)
	assert.Equal(t, 30*time.Second, oc.Interval)

	viper.Set("otel.enabled", true)
	assert.True(t, GetOTelConfig().Enabled)
}

func TestGetMonitorConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"monitor": {"interval": "1s"}}`)))

	mc := GetMonitorConfig()
	assert.True(t, mc.Enabled)
	assert.Equal(t, time.Second, mc.Interval)
}

func TestGetStorageConfig_Stream(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"storage": {"type": "stream", "stream": {"secret": "s3cret"}}}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "stream", sc.Type)
	assert.Equal(t, "ws://localhost:5000/api/v1/stream", sc.Stream.URL)
	assert.Equal(t, "s3cret", sc.Stream.Secret)
}
