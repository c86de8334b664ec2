package trainer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DataDir is where checkpoints and run statistics land by default.
const DataDir = "data"

// EpisodeRecord rappresenta i dati di un singolo episodio.
type EpisodeRecord struct {
	Episode  int     `json:"episode"`
	Score    int     `json:"score"`
	Steps    int     `json:"steps"`
	Duration float64 `json:"duration"`
}

// RunStats accumula i record di episodio di una singola run di training.
type RunStats struct {
	RunID     string          `json:"run_id"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Episodes  []EpisodeRecord `json:"episodes"`
}

// NewRunStats crea le statistiche per una nuova run.
func NewRunStats() *RunStats {
	return &RunStats{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
		Episodes:  make([]EpisodeRecord, 0),
	}
}

// Add registra un episodio concluso.
func (s *RunStats) Add(score, steps int, duration time.Duration) {
	s.Episodes = append(s.Episodes, EpisodeRecord{
		Episode:  len(s.Episodes) + 1,
		Score:    score,
		Steps:    steps,
		Duration: duration.Seconds(),
	})
}

// Scores returns all recorded scores as floats.
func (s *RunStats) Scores() []float64 {
	scores := make([]float64, len(s.Episodes))
	for i, e := range s.Episodes {
		scores[i] = float64(e.Score)
	}
	return scores
}

// Summary restituisce media, mediana e massimo dei punteggi registrati.
func (s *RunStats) Summary() (mean, median float64, max int) {
	scores := s.Scores()
	if len(scores) == 0 {
		return 0, 0, 0
	}
	mean = stat.Mean(scores, nil)

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	median = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	return mean, median, int(floats.Max(scores))
}

// SaveToFile salva le statistiche su file in formato JSON, under a per-run
// directory keyed by the run ID.
func (s *RunStats) SaveToFile() error {
	dir := filepath.Join(DataDir, "runs", s.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create stats directory: %v", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats data: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stats.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %v", err)
	}
	return nil
}
