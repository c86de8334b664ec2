package qlearning

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/rand"

	"snake-rl/agent"
	"snake-rl/game"
)

// NumActions is the size of the relative action space.
const NumActions = game.NumActions

// QTable memorizza i valori Q per coppie stato-azione.
type QTable map[agent.State][]float64

// Hyperparams bundles the tunables of a tabular learner. The pool trainer
// hands different presets to different workers.
type Hyperparams struct {
	LearningRate float64 `json:"lr"`
	Discount     float64 `json:"gamma"`
	Epsilon      float64 `json:"epsilon"`
	EpsilonDecay float64 `json:"epsilon_decay"`
	EpsilonMin   float64 `json:"epsilon_min"`
}

// DefaultHyperparams returns the baseline preset.
func DefaultHyperparams() Hyperparams {
	return Hyperparams{
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      1.0,
		EpsilonDecay: 0.995,
		EpsilonMin:   0.01,
	}
}

// Agent rappresenta un agente di Q-learning tabellare.
type Agent struct {
	QTable       QTable
	LearningRate float64
	Discount     float64
	Epsilon      float64
	EpsilonDecay float64
	EpsilonMin   float64

	rng *rand.Rand
}

// NewAgent crea un nuovo agente di Q-learning.
func NewAgent(hp Hyperparams, seed uint64) *Agent {
	return &Agent{
		QTable:       make(QTable),
		LearningRate: hp.LearningRate,
		Discount:     hp.Discount,
		Epsilon:      hp.Epsilon,
		EpsilonDecay: hp.EpsilonDecay,
		EpsilonMin:   hp.EpsilonMin,
		rng:          newRand(seed),
	}
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// GetAction seleziona un'azione usando una politica epsilon-greedy.
func (a *Agent) GetAction(state agent.State) game.Action {
	q := a.values(state)

	// Esplorazione: azione casuale.
	if a.rng.Float64() < a.Epsilon {
		return game.Action(a.rng.Intn(NumActions))
	}

	// Sfruttamento: azione con il massimo valore Q, first index wins ties.
	best := 0
	for i := 1; i < NumActions; i++ {
		if q[i] > q[best] {
			best = i
		}
	}
	return game.Action(best)
}

// Update aggiorna il valore Q per una coppia stato-azione:
// Q(s,a) = Q(s,a) + lr * (target - Q(s,a)), with the target cut to the bare
// reward on terminal transitions. Epsilon decays after every update.
func (a *Agent) Update(state agent.State, action game.Action, reward float64, next agent.State, done bool) {
	q := a.values(state)

	target := reward
	if !done {
		target = reward + a.Discount*maxValue(a.values(next))
	}
	q[action] += a.LearningRate * (target - q[action])

	if a.Epsilon > a.EpsilonMin {
		a.Epsilon *= a.EpsilonDecay
		if a.Epsilon < a.EpsilonMin {
			a.Epsilon = a.EpsilonMin
		}
	}
}

// values restituisce il vettore Q per uno stato, inizializzandolo pigramente.
func (a *Agent) values(state agent.State) []float64 {
	q, ok := a.QTable[state]
	if !ok {
		q = make([]float64, NumActions)
		a.QTable[state] = q
	}
	return q
}

func maxValue(q []float64) float64 {
	max := q[0]
	for _, v := range q[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// snapshot rappresenta lo stato dell'agente da salvare.
type snapshot struct {
	QTable  QTable  `json:"qtable"`
	Epsilon float64 `json:"epsilon"`
}

// Save salva lo stato dell'agente su un file, overwriting any previous
// checkpoint.
func (a *Agent) Save(filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating checkpoint directory: %v", err)
		}
	}

	data, err := json.MarshalIndent(snapshot{QTable: a.QTable, Epsilon: a.Epsilon}, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling QTable: %v", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("error writing QTable to file: %v", err)
	}
	return nil
}

// Load carica lo stato dell'agente da un file. A missing file is not an
// error: the agent simply stays untrained.
func (a *Agent) Load(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading QTable file: %v", err)
	}

	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("error unmarshaling QTable: %v", err)
	}
	if s.QTable != nil {
		a.QTable = s.QTable
		a.Epsilon = s.Epsilon
	}
	return nil
}
