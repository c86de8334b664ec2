package trainer

import (
	"fmt"
	"log"
	"time"

	"snake-rl/agent"
	"snake-rl/game"
	"snake-rl/qlearning"
)

// DQNTrainer drives the neural variant: a short-memory update on every
// transition, a long-memory replay update at episode end.
type DQNTrainer struct {
	Game  *game.Game
	Agent *qlearning.DQNAgent
	Stats *RunStats

	// CheckpointPath, when set, receives the network weights every time the
	// record score improves.
	CheckpointPath string
	// StepLimit bounds a single episode; 0 means unlimited.
	StepLimit int
}

// NewDQNTrainer crea un nuovo trainer DQN.
func NewDQNTrainer(g *game.Game, a *qlearning.DQNAgent, checkpoint string) *DQNTrainer {
	return &DQNTrainer{
		Game:           g,
		Agent:          a,
		Stats:          NewRunStats(),
		CheckpointPath: checkpoint,
	}
}

// Run trains until the record score reaches targetScore, returning the
// record achieved.
func (t *DQNTrainer) Run(targetScore int) (int, error) {
	record := 0
	for {
		start := time.Now()
		score, steps := t.episode()

		t.Agent.IncrementGames()
		t.Agent.TrainLongMemory()
		t.Stats.Add(score, steps, time.Since(start))

		if score > record {
			record = score
			if t.CheckpointPath != "" {
				if err := t.Agent.SaveWeights(t.CheckpointPath); err != nil {
					return record, fmt.Errorf("error saving weights: %v", err)
				}
			}
		}

		mean, _, _ := t.Stats.Summary()
		log.Printf("game %d: score %d, record %d, mean %.2f",
			t.Agent.GamesPlayed, score, record, mean)

		if record >= targetScore {
			log.Printf("target record of %d reached, stopping training", targetScore)
			break
		}
	}
	t.Stats.EndTime = time.Now()
	return record, nil
}

// episode gioca un singolo episodio DQN: train on each transition as it
// happens, and remember it for replay.
func (t *DQNTrainer) episode() (score, steps int) {
	t.Game.Reset()
	state := agent.GetState(t.Game).Vector()

	for {
		action := t.Agent.GetAction(state)
		reward, done, sc := t.Game.PlayStep(action)
		next := agent.GetState(t.Game).Vector()

		tr := qlearning.Transition{
			State:     state,
			Action:    int(action),
			Reward:    reward,
			NextState: next,
			Done:      done,
		}
		t.Agent.TrainShortMemory(tr)
		t.Agent.Remember(tr)

		state = next
		score = sc
		steps++
		if done || (t.StepLimit > 0 && steps >= t.StepLimit) {
			return score, steps
		}
	}
}
