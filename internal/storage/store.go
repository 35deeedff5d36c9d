package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	configFile   = "config.yaml"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Dt         float64            `json:"dt"`
	Gravity    float64            `json:"gravity"`
	Iterations int                `json:"iterations"`
	Relaxation float64            `json:"relaxation"`
	Solver     string             `json:"solver"`
	Steps      int                `json:"steps"`
	Frames     int                `json:"frames"`
	Skipped    int                `json:"skipped"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// FrameRow is one particle of one recorded frame in frames.csv.
type FrameRow struct {
	Step  int     `csv:"step"`
	Time  float64 `csv:"time"`
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
}

// Save writes a run directory holding metadata.json, config.yaml and
// frames.csv, and returns its ID.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (string, error) {
	name := cfg.Name
	if name == "" {
		name = "custom"
	}
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}

	meta := RunMetadata{
		ID:         runID,
		Preset:     name,
		Timestamp:  time.Now(),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Dt:         cfg.Dt,
		Gravity:    cfg.Gravity,
		Iterations: cfg.Iterations,
		Relaxation: cfg.Relaxation,
		Solver:     cfg.Solver,
		Steps:      result.StepsTaken,
		Frames:     len(result.Frames),
		Skipped:    result.Skipped,
		Metrics:    result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	f, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", fmt.Errorf("creating frames.csv: %w", err)
	}
	defer f.Close()

	if err := WriteFrames(f, result.Frames); err != nil {
		return "", fmt.Errorf("writing frames: %w", err)
	}

	return runID, nil
}

// WriteFrames flattens frames into one CSV row per particle.
func WriteFrames(w io.Writer, frames []dynamo.Frame) error {
	rows := make([]FrameRow, 0)
	for _, fr := range frames {
		for i, p := range fr.Positions {
			rows = append(rows, FrameRow{Step: fr.Step, Time: fr.Time, Index: i, X: p.X, Y: p.Y})
		}
	}
	if len(rows) == 0 {
		_, err := io.WriteString(w, "step,time,index,x,y\n")
		return err
	}
	return gocsv.Marshal(rows, w)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadFrames rebuilds the recorded frames of a run, in step order.
func (s *Store) LoadFrames(runID string) ([]dynamo.Frame, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []FrameRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []dynamo.Frame{}, nil
		}
		return nil, err
	}

	frames := make([]dynamo.Frame, 0)
	for _, r := range rows {
		if len(frames) == 0 || frames[len(frames)-1].Step != r.Step {
			frames = append(frames, dynamo.Frame{Step: r.Step, Time: r.Time})
		}
		fr := &frames[len(frames)-1]
		for len(fr.Positions) <= r.Index {
			fr.Positions = append(fr.Positions, dynamo.Vec2{})
		}
		fr.Positions[r.Index] = dynamo.Vec2{X: r.X, Y: r.Y}
	}

	return frames, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
