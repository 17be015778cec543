package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/psbattle/engine/internal/config"
	v1 "github.com/psbattle/engine/internal/storage/memory/export/v1"
	"github.com/psbattle/engine/pkg/core"
)

var started = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newBackend(t *testing.T, compress bool) *Backend {
	t.Helper()
	b := New(config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: compress})
	b.now = func() time.Time { return started.Add(5 * time.Minute) }
	return b
}

func startBattle(t *testing.T, b *Backend) {
	t.Helper()
	err := b.StartBattle(&core.BattleInfo{
		RoomID:    "battle-gen9ou-1",
		Title:     "Alice vs. Bob",
		Format:    "[Gen 9] OU",
		Gen:       9,
		GameType:  core.Singles,
		P1:        "Alice",
		P2:        "Bob",
		StartedAt: started,
	})
	if err != nil {
		t.Fatalf("StartBattle failed: %v", err)
	}
}

func readExport(t *testing.T, path string) v1.Export {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("failed to open gzip reader: %v", err)
		}
		defer gz.Close()
		r = gz
	}

	var export v1.Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	return export
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if b.ExportedFilePath() != "" {
		t.Errorf("expected no export, got %s", b.ExportedFilePath())
	}
}

func TestRecordWithoutBattle(t *testing.T) {
	b := New(config.MemoryConfig{})

	errs := []error{
		b.RecordTurn(&core.TurnRecord{}),
		b.RecordLine(&core.LogLine{}),
		b.RecordEvent(&core.BattleEvent{}),
		b.RecordDecision(&core.DecisionRecord{}),
		b.EndBattle("Alice"),
	}
	for i, err := range errs {
		if !errors.Is(err, core.ErrNoBattle) {
			t.Errorf("call %d: expected ErrNoBattle, got %v", i, err)
		}
	}
}

func TestEndBattleExportsJSON(t *testing.T) {
	b := newBackend(t, false)
	startBattle(t, b)

	_ = b.RecordLine(&core.LogLine{Seq: 1, Turn: 0, Kind: core.LineText, Text: "Battle started between Alice and Bob!"})
	_ = b.RecordTurn(&core.TurnRecord{Turn: 1, Time: started})
	_ = b.RecordEvent(&core.BattleEvent{Turn: 1, Type: "faint", Subject: "foea: Garchomp"})
	_ = b.RecordDecision(&core.DecisionRecord{RQID: 3, Turn: 1, Command: core.CommandChoose, Choice: "move 1"})

	if err := b.EndBattle("Alice"); err != nil {
		t.Fatalf("EndBattle failed: %v", err)
	}

	path := b.ExportedFilePath()
	want := filepath.Join(b.cfg.OutputDir, "battle-gen9ou-1_20260301_180000.json")
	if path != want {
		t.Fatalf("expected export path %s, got %s", want, path)
	}

	export := readExport(t, path)
	if export.Winner != "Alice" {
		t.Errorf("expected winner Alice, got %q", export.Winner)
	}
	if export.EndedAt != "2026-03-01T18:05:00Z" {
		t.Errorf("unexpected endedAt %q", export.EndedAt)
	}
	if len(export.Log) != 1 || len(export.Turns) != 1 || len(export.Events) != 1 || len(export.Decisions) != 1 {
		t.Errorf("unexpected export sizes: log=%d turns=%d events=%d decisions=%d",
			len(export.Log), len(export.Turns), len(export.Events), len(export.Decisions))
	}

	// the battle is gone after export
	if err := b.RecordLine(&core.LogLine{}); !errors.Is(err, core.ErrNoBattle) {
		t.Errorf("expected ErrNoBattle after EndBattle, got %v", err)
	}
}

func TestEndBattleGzip(t *testing.T) {
	b := newBackend(t, true)
	startBattle(t, b)

	if err := b.EndBattle(""); err != nil {
		t.Fatalf("EndBattle failed: %v", err)
	}
	if !strings.HasSuffix(b.ExportedFilePath(), ".json.gz") {
		t.Fatalf("expected a .json.gz export, got %s", b.ExportedFilePath())
	}

	export := readExport(t, b.ExportedFilePath())
	if export.RoomID != "battle-gen9ou-1" {
		t.Errorf("expected room battle-gen9ou-1, got %q", export.RoomID)
	}
	if export.Winner != "" {
		t.Errorf("expected a tie, got winner %q", export.Winner)
	}
}

func TestCloseExportsUnfinishedBattle(t *testing.T) {
	b := newBackend(t, false)
	startBattle(t, b)

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if b.ExportedFilePath() == "" {
		t.Error("expected the unfinished battle to be exported on Close")
	}
}

func TestStartBattleDropsPrevious(t *testing.T) {
	b := newBackend(t, false)
	startBattle(t, b)
	_ = b.RecordLine(&core.LogLine{Seq: 1, Text: "old"})

	startBattle(t, b)
	if len(b.battle.Lines) != 0 {
		t.Errorf("expected a fresh battle, got %d lines", len(b.battle.Lines))
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name     string
		room     string
		compress bool
		want     string
	}{
		{"plain", "battle-gen9ou-1", false, "battle-gen9ou-1_20260301_180000.json"},
		{"compressed", "battle-gen9ou-1", true, "battle-gen9ou-1_20260301_180000.json.gz"},
		{"unsafe characters", "battle: a/b", false, "battle__a_b_20260301_180000.json"},
		{"empty room", "", false, "battle_20260301_180000.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(config.MemoryConfig{CompressOutput: tt.compress})
			b.battle = &v1.BattleData{Info: core.BattleInfo{RoomID: tt.room, StartedAt: started}}
			if got := b.exportFilename(); got != tt.want {
				t.Errorf("exportFilename() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConcurrentRecording(t *testing.T) {
	b := newBackend(t, false)
	startBattle(t, b)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			_ = b.RecordLine(&core.LogLine{Seq: seq})
			_ = b.RecordEvent(&core.BattleEvent{Turn: seq})
		}(i)
	}
	wg.Wait()

	if len(b.battle.Lines) != 10 || len(b.battle.Events) != 10 {
		t.Errorf("expected 10 lines and events, got %d and %d", len(b.battle.Lines), len(b.battle.Events))
	}
}
