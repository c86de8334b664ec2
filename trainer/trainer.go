package trainer

import (
	"fmt"
	"log"
	"time"

	"snake-rl/agent"
	"snake-rl/game"
	"snake-rl/qlearning"
)

// Trainer drives single-run tabular training: one environment, one agent,
// an update after every step.
type Trainer struct {
	Game  *game.Game
	Agent *qlearning.Agent
	Stats *RunStats

	// CheckpointPath, when set, receives the Q-table every time the best
	// score improves.
	CheckpointPath string
	// StepLimit bounds a single episode; 0 means unlimited.
	StepLimit int
}

// NewTrainer crea un nuovo trainer tabellare.
func NewTrainer(g *game.Game, a *qlearning.Agent, checkpoint string) *Trainer {
	return &Trainer{
		Game:           g,
		Agent:          a,
		Stats:          NewRunStats(),
		CheckpointPath: checkpoint,
	}
}

// Run esegue l'addestramento dell'agente for at most episodes episodes,
// stopping early once the best score reaches targetScore (if positive). It
// returns the best score achieved.
func (t *Trainer) Run(episodes, targetScore int) (int, error) {
	best := 0
	for ep := 0; ep < episodes; ep++ {
		start := time.Now()
		score, steps := t.episode()
		t.Stats.Add(score, steps, time.Since(start))

		if score > best {
			best = score
			if t.CheckpointPath != "" {
				if err := t.Agent.Save(t.CheckpointPath); err != nil {
					return best, fmt.Errorf("error saving checkpoint: %v", err)
				}
			}
		}

		if (ep+1)%50 == 0 {
			mean, _, max := t.Stats.Summary()
			log.Printf("episode %d: best %d, mean %.2f, max %d, epsilon %.3f",
				ep+1, best, mean, max, t.Agent.Epsilon)
		}

		if targetScore > 0 && best >= targetScore {
			break
		}
	}
	t.Stats.EndTime = time.Now()
	return best, nil
}

// episode gioca un singolo episodio, updating the agent after every step.
func (t *Trainer) episode() (score, steps int) {
	t.Game.Reset()
	state := agent.GetState(t.Game)

	for {
		action := t.Agent.GetAction(state)
		reward, done, sc := t.Game.PlayStep(action)
		next := agent.GetState(t.Game)
		t.Agent.Update(state, action, reward, next, done)

		state = next
		score = sc
		steps++
		if done || (t.StepLimit > 0 && steps >= t.StepLimit) {
			return score, steps
		}
	}
}
