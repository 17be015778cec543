package logging

import (
	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// GraylogWriter ships log lines to a GELF endpoint. Events below MinLevel
// are dropped before they reach the network.
type GraylogWriter struct {
	w        *gelf.Writer
	MinLevel zerolog.Level
}

// NewGraylogWriter dials addr ("host:12201") over UDP.
func NewGraylogWriter(addr string) (*GraylogWriter, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, err
	}
	w.Facility = "psbattle"
	return &GraylogWriter{w: w, MinLevel: zerolog.InfoLevel}, nil
}

func (g *GraylogWriter) Write(p []byte) (int, error) {
	return g.w.Write(p)
}

// WriteLevel implements zerolog.LevelWriter.
func (g *GraylogWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < g.MinLevel {
		return len(p), nil
	}
	return g.w.Write(p)
}

func (g *GraylogWriter) Close() error {
	return g.w.Close()
}
