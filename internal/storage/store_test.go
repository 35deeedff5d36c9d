package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
)

func testResult() *dynamo.Result {
	return &dynamo.Result{
		Frames: []dynamo.Frame{
			{Step: 0, Time: 0, Positions: []dynamo.Vec2{{X: -1, Y: 0.5}, {X: 0, Y: 0.5}}},
			{Step: 10, Time: 10, Positions: []dynamo.Vec2{{X: -1, Y: 0.5}, {X: 0.01, Y: 0.4}}},
		},
		Metrics:    map[string]float64{"strain": 0.02},
		StepsTaken: 10,
		Skipped:    1,
		Errors:     []error{errors.New("boom")},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	runID, err := st.Save(cfg, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "reference" {
		t.Errorf("expected preset 'reference', got '%s'", meta.Preset)
	}
	if meta.Steps != 10 || meta.Frames != 2 || meta.Skipped != 1 {
		t.Errorf("unexpected counters: %+v", meta)
	}
	if meta.Metrics["strain"] != 0.02 {
		t.Errorf("expected strain 0.02, got %f", meta.Metrics["strain"])
	}
	if len(meta.Errors) != 1 || meta.Errors[0] != "boom" {
		t.Errorf("expected recorded error, got %v", meta.Errors)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1].Step != 10 || len(frames[1].Positions) != 2 {
		t.Errorf("unexpected frame %+v", frames[1])
	}
	if frames[1].Positions[1] != (dynamo.Vec2{X: 0.01, Y: 0.4}) {
		t.Errorf("position mismatch: %+v", frames[1].Positions[1])
	}

	loaded, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if loaded.Width != cfg.Width || loaded.Relaxation != cfg.Relaxation {
		t.Errorf("config mismatch: %+v", loaded)
	}
}

func TestStoreEmptyFrames(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), &dynamo.Result{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("expected no frames, got %d", len(frames))
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for _, name := range []string{"stiff", "banner"} {
		if _, err := st.Save(config.GetPreset(name), testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(t.TempDir() + "/nope")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreLoadNonexistent(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nonexistent"); err == nil {
		t.Error("expected error for nonexistent run")
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Meta == nil || data.Meta.ID != runID {
		t.Errorf("meta mismatch: %+v", data.Meta)
	}
	if len(data.Frames) != 2 || data.Frames[0].Positions[0] != [2]float64{-1, 0.5} {
		t.Errorf("frames mismatch: %+v", data.Frames)
	}
}

func TestExportJSONFile(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := st.ExportJSONFile(path, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Meta == nil || data.Meta.ID != runID {
		t.Errorf("meta mismatch: %+v", data.Meta)
	}

	if err := st.ExportJSONFile(path, "missing"); err == nil {
		t.Error("expected error for unknown run")
	}
}
