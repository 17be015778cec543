package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/psbattle/engine/internal/storage/memory/export/v1"
)

var filenameReplacer = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")

// exportFilename is "<room>_<start>.json", with ".gz" when compressing.
func (b *Backend) exportFilename() string {
	room := filenameReplacer.Replace(b.battle.Info.RoomID)
	if room == "" {
		room = "battle"
	}
	started := b.battle.Info.StartedAt
	if started.IsZero() {
		started = b.battle.EndedAt
	}
	name := fmt.Sprintf("%s_%s.json", room, started.UTC().Format("20060102_150405"))
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	return name
}

// exportJSON writes the battle data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := v1.Build(b.battle)
	outputPath := filepath.Join(b.cfg.OutputDir, b.exportFilename())

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	write := writeJSON
	if b.cfg.CompressOutput {
		write = writeGzipJSON
	}
	if err := write(outputPath, export); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(data)
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return gzWriter.Close()
}
