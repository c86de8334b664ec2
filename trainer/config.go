package trainer

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvWorkers          = "TRAIN_N_WORKERS"
	EnvEpisodesPerBatch = "TRAIN_EPISODES_PER_WORKER"
	EnvTargetScore      = "TRAIN_BEST_SCORE"
	EnvRender           = "TRAIN_RENDER"
	EnvFastSim          = "FAST_SIM"
)

const (
	DefaultWorkers          = 4
	DefaultEpisodesPerBatch = 100
	DefaultTargetScore      = 1000
)

// Config raccoglie i parametri di training letti dall'ambiente.
type Config struct {
	Workers          int
	EpisodesPerBatch int
	TargetScore      int
	Render           bool
	FastSim          bool
}

// FromEnv builds a Config from environment variables, falling back to the
// documented defaults. Malformed values fall back too.
func FromEnv() Config {
	return Config{
		Workers:          envInt(EnvWorkers, DefaultWorkers),
		EpisodesPerBatch: envInt(EnvEpisodesPerBatch, DefaultEpisodesPerBatch),
		TargetScore:      envInt(EnvTargetScore, DefaultTargetScore),
		Render:           envBool(EnvRender),
		FastSim:          envBool(EnvFastSim),
	}
}

func envInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
