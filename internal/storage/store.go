package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/mpetrov/gravlab/internal/sim"
	"github.com/mpetrov/gravlab/internal/vec"
)

// Store persists runs under a data directory, one subdirectory per run
// holding metadata.json and frames.csv.
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
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	G         float64            `json:"g"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Stepper   string             `json:"stepper"`
	Bodies    int                `json:"bodies"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(scenario string, g, dt, duration float64, stepper string, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	numBodies := 0
	if len(result.Frames) > 0 {
		numBodies = len(result.Frames[0])
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  scenario,
		Timestamp: time.Now(),
		G:         g,
		Dt:        dt,
		Duration:  duration,
		Stepper:   stepper,
		Bodies:    numBodies,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Frames) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := 0; i < numBodies; i++ {
		header = append(header,
			fmt.Sprintf("b%d_x", i),
			fmt.Sprintf("b%d_y", i),
			fmt.Sprintf("b%d_z", i),
		)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, frame := range result.Frames {
		row := make([]string, 0, 1+numBodies*3)
		row = append(row, strconv.FormatFloat(result.Times[i], 'f', 6, 64))
		for _, b := range frame {
			row = append(row,
				strconv.FormatFloat(b.Pos.X, 'g', 17, 64),
				strconv.FormatFloat(b.Pos.Y, 'g', 17, 64),
				strconv.FormatFloat(b.Pos.Z, 'g', 17, 64),
			)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames returns the recorded positions per frame per body, plus
// the frame times.
func (s *Store) LoadFrames(runID string) ([][]vec.Vec3, []float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 1 {
		return nil, nil, fmt.Errorf("storage: run %s has no frames", runID)
	}

	numBodies := (len(rows[0]) - 1) / 3
	frames := make([][]vec.Vec3, 0, len(rows)-1)
	times := make([]float64, 0, len(rows)-1)

	for _, row := range rows[1:] {
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, nil, err
		}

		frame := make([]vec.Vec3, numBodies)
		for i := 0; i < numBodies; i++ {
			x, errX := strconv.ParseFloat(row[1+i*3], 64)
			y, errY := strconv.ParseFloat(row[2+i*3], 64)
			z, errZ := strconv.ParseFloat(row[3+i*3], 64)
			if errX != nil || errY != nil || errZ != nil {
				return nil, nil, fmt.Errorf("storage: run %s: malformed frame row", runID)
			}
			frame[i] = vec.New(x, y, z)
		}

		frames = append(frames, frame)
		times = append(times, t)
	}

	return frames, times, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}
