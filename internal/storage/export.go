package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/clothsim/internal/dynamo"
)

type ExportData struct {
	Meta   *RunMetadata  `json:"meta"`
	Frames []ExportFrame `json:"frames"`
}

type ExportFrame struct {
	Step      int          `json:"step"`
	Time      float64      `json:"time"`
	Positions [][2]float64 `json:"positions"`
}

// ExportJSON writes a stored run as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return EncodeJSON(w, meta, frames)
}

func (s *Store) ExportJSONFile(path, runID string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.ExportJSON(f, runID)
}

func EncodeJSON(w io.Writer, meta *RunMetadata, frames []dynamo.Frame) error {
	data := ExportData{
		Meta:   meta,
		Frames: make([]ExportFrame, len(frames)),
	}
	for i, fr := range frames {
		pos := make([][2]float64, len(fr.Positions))
		for j, p := range fr.Positions {
			pos[j] = [2]float64{p.X, p.Y}
		}
		data.Frames[i] = ExportFrame{Step: fr.Step, Time: fr.Time, Positions: pos}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
