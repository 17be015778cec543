package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/psbattle/engine/internal/dispatcher"

// instruments counts protocol lines per command and times their handlers.
type instruments struct {
	processed metric.Int64Counter
	failed    metric.Int64Counter
	unknown   metric.Int64Counter
	duration  metric.Float64Histogram
}

func newInstruments() (instruments, error) {
	m := otel.Meter(instrumentationName)

	var ins instruments
	var err error

	ins.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total protocol lines handled"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating processed counter: %w", err)
	}

	ins.failed, err = m.Int64Counter(
		"dispatcher.events.failed",
		metric.WithDescription("Total protocol lines whose handler failed"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating failed counter: %w", err)
	}

	ins.unknown, err = m.Int64Counter(
		"dispatcher.events.unknown",
		metric.WithDescription("Total protocol lines without a handler"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating unknown counter: %w", err)
	}

	ins.duration, err = m.Float64Histogram(
		"dispatcher.events.duration",
		metric.WithDescription("Handler run time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating duration histogram: %w", err)
	}

	return ins, nil
}

func commandAttr(name string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("command", name))
}

func (ins instruments) handled(attr metric.MeasurementOption, took time.Duration, err error) {
	ctx := context.Background()
	ins.processed.Add(ctx, 1, attr)
	ins.duration.Record(ctx, float64(took)/float64(time.Millisecond), attr)
	if err != nil {
		ins.failed.Add(ctx, 1, attr)
	}
}

func (ins instruments) missing(name string) {
	ins.unknown.Add(context.Background(), 1, commandAttr(name))
}
