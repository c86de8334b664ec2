package trainer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"snake-rl/game"
	"snake-rl/qlearning"
)

func smallBoard(seed uint64) game.Config {
	return game.Config{Width: 200, Height: 200, BlockSize: 20, Shaping: game.ShapingDistance, Seed: seed}
}

func TestTrainerRunsEpisodeBudget(t *testing.T) {
	g := game.NewGame(smallBoard(1))
	a := qlearning.NewAgent(qlearning.DefaultHyperparams(), 1)

	tr := NewTrainer(g, a, "")
	tr.StepLimit = 200

	best, err := tr.Run(5, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if best < 0 {
		t.Errorf("best score = %d", best)
	}
	if len(tr.Stats.Episodes) != 5 {
		t.Errorf("recorded %d episodes, want 5", len(tr.Stats.Episodes))
	}
	if len(a.QTable) == 0 {
		t.Error("agent learned nothing: empty Q-table after training")
	}
}

func TestTrainerCheckpointsOnImprovement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qtable.json")
	g := game.NewGame(smallBoard(7))
	a := qlearning.NewAgent(qlearning.DefaultHyperparams(), 7)

	tr := NewTrainer(g, a, path)
	tr.StepLimit = 500

	best, err := tr.Run(200, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if best < 1 {
		t.Skipf("no food found in 200 episodes (best %d), nothing to checkpoint", best)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("checkpoint missing after improvement: %v", err)
	}
}

func TestPoolRunBatch(t *testing.T) {
	p := &Pool{
		Config: Config{
			Workers:          3,
			EpisodesPerBatch: 2,
			TargetScore:      DefaultTargetScore,
		},
		GameConfig: smallBoard(42),
		StepLimit:  100,
	}

	results := p.RunBatch(1)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for id, r := range results {
		if r.WorkerID != id {
			t.Errorf("result %d carries worker ID %d", id, r.WorkerID)
		}
		if r.Table == nil {
			t.Errorf("worker %d returned a nil table", id)
		}
		if r.BestScore < 0 {
			t.Errorf("worker %d best score = %d", id, r.BestScore)
		}
	}
}

func TestPoolRunRejectsNonPositiveTarget(t *testing.T) {
	for _, target := range []int{0, -3} {
		p := &Pool{
			Config: Config{
				Workers:          1,
				EpisodesPerBatch: 1,
				TargetScore:      target,
			},
			GameConfig: smallBoard(1),
			StepLimit:  10,
		}

		if _, err := p.Run(filepath.Join(t.TempDir(), "qtable.json")); err == nil {
			t.Errorf("target %d: Run succeeded, want an error", target)
		}
	}
}

func TestRunStatsSummary(t *testing.T) {
	s := NewRunStats()
	s.Add(1, 10, time.Second)
	s.Add(3, 30, time.Second)
	s.Add(2, 20, time.Second)

	mean, median, max := s.Summary()
	if mean != 2 {
		t.Errorf("mean = %v, want 2", mean)
	}
	if median != 2 {
		t.Errorf("median = %v, want 2", median)
	}
	if max != 3 {
		t.Errorf("max = %v, want 3", max)
	}
	if s.RunID == "" {
		t.Error("run ID empty")
	}
}
