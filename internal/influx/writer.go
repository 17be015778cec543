package influx

import (
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/psbattle/engine/internal/battle"
	"github.com/psbattle/engine/pkg/core"
)

// Measurements written by Writer.
const (
	MeasurementBattle = "battle"
	MeasurementHealth = "health"
	MeasurementBoosts = "boosts"
	MeasurementResult = "result"
)

// PointWriter accepts points. *Manager is one.
type PointWriter interface {
	WritePoint(point *influxdb2_write.Point) error
}

// Writer is a battle.Presenter that turns health and stat stage changes into
// points tagged with the room, side and pokemon.
type Writer struct {
	battle.NopPresenter

	sink   PointWriter
	logger zerolog.Logger
	now    func() time.Time

	room   string
	format string
	turn   int
}

var _ battle.Presenter = (*Writer)(nil)

// NewWriter creates a presenter writing to sink.
func NewWriter(sink PointWriter, logger zerolog.Logger) *Writer {
	return &Writer{
		sink:   sink,
		logger: logger.With().Str("component", "influx").Logger(),
		now:    time.Now,
	}
}

func (w *Writer) BattleStarted(info core.BattleInfo) {
	w.room, w.format, w.turn = info.RoomID, info.Format, 0

	p := influxdb2_write.NewPointWithMeasurement(MeasurementBattle).
		AddTag("room", w.room).
		AddTag("format", w.format).
		AddField("p1", info.P1).
		AddField("p2", info.P2).
		AddField("gen", info.Gen).
		AddField("rated", info.Rated).
		SetTime(w.now())
	w.write(p)
}

func (w *Writer) TurnStarted(rec core.TurnRecord) {
	w.turn = rec.Turn
}

func (w *Writer) HealthChanged(id core.PokemonID, c core.Condition) {
	p := w.pokemonPoint(MeasurementHealth, id).
		AddField("hp", c.HP).
		AddField("maxhp", c.MaxHP).
		AddField("fraction", c.Health()).
		AddField("fainted", c.Fainted())
	if c.Status != "" {
		p.AddField("status", c.Status)
	}
	w.write(p)
}

func (w *Writer) StatChanged(id core.PokemonID, stats core.StatModifiers) {
	p := w.pokemonPoint(MeasurementBoosts, id)
	for stat, stage := range stats.Stages() {
		p.AddField(stat, stage)
	}
	w.write(p)
}

func (w *Writer) BattleEnded(winner string) {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementResult).
		AddTag("room", w.room).
		AddTag("format", w.format).
		AddField("winner", winner).
		AddField("turns", w.turn).
		SetTime(w.now())
	w.write(p)
}

func (w *Writer) pokemonPoint(measurement string, id core.PokemonID) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement(measurement).
		AddTag("room", w.room).
		AddTag("side", id.Side.String()).
		AddTag("pokemon", id.Name).
		AddField("turn", w.turn).
		SetTime(w.now())
}

func (w *Writer) write(p *influxdb2_write.Point) {
	if w.room == "" {
		return
	}
	if err := w.sink.WritePoint(p); err != nil {
		w.logger.Warn().Err(err).Str("measurement", p.Name()).Msg("Failed to write point")
	}
}
