package trainer

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvWorkers, EnvEpisodesPerBatch, EnvTargetScore, EnvRender, EnvFastSim} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.EpisodesPerBatch != DefaultEpisodesPerBatch {
		t.Errorf("EpisodesPerBatch = %d, want %d", cfg.EpisodesPerBatch, DefaultEpisodesPerBatch)
	}
	if cfg.TargetScore != DefaultTargetScore {
		t.Errorf("TargetScore = %d, want %d", cfg.TargetScore, DefaultTargetScore)
	}
	if cfg.Render || cfg.FastSim {
		t.Error("render/fast-sim default on")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvEpisodesPerBatch, "50")
	t.Setenv(EnvTargetScore, "7")
	t.Setenv(EnvRender, "yes")
	t.Setenv(EnvFastSim, "TRUE")

	cfg := FromEnv()
	if cfg.Workers != 2 || cfg.EpisodesPerBatch != 50 || cfg.TargetScore != 7 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.Render || !cfg.FastSim {
		t.Error("boolean overrides not applied")
	}
}

func TestFromEnvMalformedFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "many")
	t.Setenv(EnvTargetScore, "-5")

	cfg := FromEnv()
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want fallback %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.TargetScore != DefaultTargetScore {
		t.Errorf("TargetScore = %d, want fallback %d", cfg.TargetScore, DefaultTargetScore)
	}
}
