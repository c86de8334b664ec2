package trainer

import (
	"fmt"
	"log"
	"sync"

	"snake-rl/game"
	"snake-rl/qlearning"
)

// Presets are the fixed hyperparameter sets cycled round-robin across
// workers, giving each worker a different exploration profile.
var Presets = []qlearning.Hyperparams{
	{LearningRate: 0.1, Discount: 0.9, Epsilon: 1.0, EpsilonDecay: 0.995, EpsilonMin: 0.01},
	{LearningRate: 0.05, Discount: 0.95, Epsilon: 1.0, EpsilonDecay: 0.99, EpsilonMin: 0.01},
	{LearningRate: 0.2, Discount: 0.8, Epsilon: 1.0, EpsilonDecay: 0.997, EpsilonMin: 0.01},
	{LearningRate: 0.1, Discount: 0.95, Epsilon: 1.0, EpsilonDecay: 0.995, EpsilonMin: 0.01},
}

// WorkerResult è il risultato di un worker al termine di un batch.
type WorkerResult struct {
	WorkerID  int
	BestScore int
	Table     qlearning.QTable
}

// Pool runs several independent tabular agents in parallel. Workers share
// nothing while a batch runs; the only synchronization point is the batch
// boundary, where their tables are collected and merged.
type Pool struct {
	Config     Config
	GameConfig game.Config
	// StepLimit bounds worker episodes; 0 means unlimited.
	StepLimit int
	// DisplayFactory builds the render surface for worker 0 when rendering
	// is enabled. Nil means headless.
	DisplayFactory func() game.Display
}

// RunBatch avvia tutti i worker per un batch e ne raccoglie i risultati,
// indexed by worker ID.
func (p *Pool) RunBatch(batch int) []WorkerResult {
	results := make([]WorkerResult, p.Config.Workers)
	out := make(chan WorkerResult, p.Config.Workers)

	var wg sync.WaitGroup
	for id := 0; id < p.Config.Workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			out <- p.trainWorker(id, batch)
		}(id)
	}
	wg.Wait()
	close(out)

	for r := range out {
		results[r.WorkerID] = r
	}
	return results
}

// trainWorker esegue il training di un singolo worker: its own environment,
// its own agent, one hyperparameter preset.
func (p *Pool) trainWorker(id, batch int) WorkerResult {
	cfg := p.GameConfig
	if cfg.Seed != 0 {
		// Derive a distinct stream per worker and batch from the base seed.
		cfg.Seed += uint64(batch*p.Config.Workers + id + 1)
	}
	g := game.NewGame(cfg)
	if p.Config.Render && id == 0 && p.DisplayFactory != nil {
		g.SetDisplay(p.DisplayFactory())
	}

	a := qlearning.NewAgent(Presets[id%len(Presets)], cfg.Seed)
	worker := &Trainer{
		Game:      g,
		Agent:     a,
		Stats:     NewRunStats(),
		StepLimit: p.StepLimit,
	}
	best, _ := worker.Run(p.Config.EpisodesPerBatch, 0)
	return WorkerResult{WorkerID: id, BestScore: best, Table: a.QTable}
}

// Run repeats batches of fresh workers until some worker's best score
// reaches the target, then persists the best individual worker's table to
// the checkpoint path. The merged table is reported but not persisted.
func (p *Pool) Run(checkpoint string) (int, error) {
	if p.Config.TargetScore <= 0 {
		return 0, fmt.Errorf("target score must be positive, got %d", p.Config.TargetScore)
	}
	if p.Config.Render && p.Config.Workers > 1 {
		log.Printf("WARNING: rendering enabled with %d workers; only worker 0 will draw", p.Config.Workers)
	}

	bestOverall := 0
	var bestTable qlearning.QTable

	for batch := 1; bestOverall < p.Config.TargetScore; batch++ {
		log.Printf("starting batch %d with %d worker(s), %d episodes each",
			batch, p.Config.Workers, p.Config.EpisodesPerBatch)

		results := p.RunBatch(batch)
		tables := make([]qlearning.QTable, 0, len(results))
		for _, r := range results {
			log.Printf("worker %d achieved best score %d", r.WorkerID, r.BestScore)
			tables = append(tables, r.Table)
			if r.BestScore > bestOverall {
				bestOverall = r.BestScore
				bestTable = r.Table
			}
		}

		merged := qlearning.MergeTables(tables)
		log.Printf("after batch %d: best overall %d, merged table covers %d states",
			batch, bestOverall, len(merged))
	}

	// The persisted artifact is the best worker's own table, not the blend.
	a := qlearning.NewAgent(qlearning.DefaultHyperparams(), 0)
	a.QTable = bestTable
	if err := a.Save(checkpoint); err != nil {
		return bestOverall, err
	}
	log.Printf("training complete, best Q-table saved to %s", checkpoint)
	return bestOverall, nil
}
