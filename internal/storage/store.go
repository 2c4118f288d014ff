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

	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
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

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string             `json:"id"`
	Solution      int                `json:"solution"`
	Name          string             `json:"name"`
	Focus         int                `json:"focus"`
	Integrator    string             `json:"integrator"`
	Timestamp     time.Time          `json:"timestamp"`
	Dt            float64            `json:"dt"`
	StepsPerFrame int                `json:"steps_per_frame"`
	Period        float64            `json:"period"`
	Frames        int                `json:"frames"`
	RecordEvery   int                `json:"record_every"`
	Divergences   int                `json:"divergences"`
	Metrics       map[string]float64 `json:"metrics"`
}

// FrameInterval is the simulated time between two recorded samples.
func (m *RunMetadata) FrameInterval() float64 {
	every := m.RecordEvery
	if every < 1 {
		every = 1
	}
	return m.Dt * float64(m.StepsPerFrame) * float64(every)
}

// Save writes meta and frames under a fresh run directory and returns the
// run ID. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, frames []Frame) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", catalog.Slug(meta.Name), now.UnixNano())
	if meta.Name == "" {
		runID = fmt.Sprintf("run_%d", now.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeFrames(csvFile, frames); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for i, record := range records[1:] {
		f, err := parseFrame(record)
		if err != nil {
			return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
		}
		frames = append(frames, f)
	}

	return frames, nil
}

func csvHeader() []string {
	header := []string{"frame", "time"}
	for i := 0; i < dynamo.NumBodies; i++ {
		for _, col := range []string{"x", "y", "z", "vx", "vy", "vz"} {
			header = append(header, col+strconv.Itoa(i))
		}
	}
	return header
}
