package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psbattle/engine/internal/config"
	"github.com/psbattle/engine/pkg/core"
)

type fakeSink struct {
	points []*influxdb2_write.Point
}

func (f *fakeSink) WritePoint(p *influxdb2_write.Point) error {
	f.points = append(f.points, p)
	return nil
}

func tags(p *influxdb2_write.Point) map[string]string {
	out := map[string]string{}
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func fields(p *influxdb2_write.Point) map[string]any {
	out := map[string]any{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

var when = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newWriter() (*Writer, *fakeSink) {
	sink := &fakeSink{}
	w := NewWriter(sink, zerolog.Nop())
	w.now = func() time.Time { return when }
	return w, sink
}

func TestWriter_NothingBeforeBattle(t *testing.T) {
	w, sink := newWriter()

	w.HealthChanged(core.PokemonID{Name: "Pikachu"}, core.NewCondition(50, 100, ""))
	w.BattleEnded("Alice")

	assert.Empty(t, sink.points)
}

func TestWriter_BattlePoints(t *testing.T) {
	w, sink := newWriter()

	w.BattleStarted(core.BattleInfo{RoomID: "battle-1", Format: "[Gen 9] OU", P1: "Alice", P2: "Bob", Gen: 9})
	w.TurnStarted(core.TurnRecord{Turn: 2})

	pikachu := core.PokemonID{Side: core.Trainer, Position: 0, Name: "Pikachu"}
	w.HealthChanged(pikachu, core.NewCondition(50, 100, "par"))

	var stats core.StatModifiers
	stats.Inc("atk", 2)
	stats.Inc("spe", -1)
	w.StatChanged(pikachu, stats)
	w.BattleEnded("Alice")

	require.Len(t, sink.points, 4)

	battle := sink.points[0]
	assert.Equal(t, MeasurementBattle, battle.Name())
	assert.Equal(t, map[string]string{"room": "battle-1", "format": "[Gen 9] OU"}, tags(battle))
	assert.Equal(t, "Alice", fields(battle)["p1"])

	health := sink.points[1]
	assert.Equal(t, MeasurementHealth, health.Name())
	assert.Equal(t, map[string]string{"room": "battle-1", "side": "trainer", "pokemon": "Pikachu"}, tags(health))
	hf := fields(health)
	assert.EqualValues(t, 50, hf["hp"])
	assert.EqualValues(t, 100, hf["maxhp"])
	assert.InDelta(t, 0.5, hf["fraction"], 1e-9)
	assert.Equal(t, false, hf["fainted"])
	assert.Equal(t, "par", hf["status"])
	assert.EqualValues(t, 2, hf["turn"])
	assert.Equal(t, when, health.Time())

	boosts := sink.points[2]
	assert.Equal(t, MeasurementBoosts, boosts.Name())
	bf := fields(boosts)
	assert.EqualValues(t, 2, bf["atk"])
	assert.EqualValues(t, -1, bf["spe"])
	assert.EqualValues(t, 0, bf["def"])

	result := sink.points[3]
	assert.Equal(t, MeasurementResult, result.Name())
	assert.Equal(t, "Alice", fields(result)["winner"])
	assert.EqualValues(t, 2, fields(result)["turns"])
}

func TestManager_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
	assert.Error(t, m.WritePoint(influxdb2_write.NewPointWithMeasurement("x")))
	assert.NoError(t, m.Close())
}

func TestManager_BackupWhenUnreachable(t *testing.T) {
	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(config.InfluxConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:1",
		Org:     "psbattle",
		Bucket:  "battles",
	}, zerolog.Nop(), backup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)

	p := influxdb2_write.NewPointWithMeasurement(MeasurementHealth).
		AddTag("room", "battle-1").
		AddField("hp", 42).
		SetTime(when)
	require.NoError(t, m.WritePoint(p))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	assert.True(t, strings.HasPrefix(line, "health,room=battle-1 hp=42i"), line)
}
