package qlearning

import (
	"encoding/gob"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"snake-rl/agent"
	"snake-rl/game"
)

func init() {
	gob.Register(&tensor.Dense{})
	gob.Register(map[string]*tensor.Dense{})
}

const (
	// Parametri DQN
	InputFeatures   = agent.NumFeatures
	HiddenLayerSize = 128
	OutputActions   = NumActions

	DQNLearningRate = 0.001
	DQNGamma        = 0.9
	MaxMemory       = 100_000
	BatchSize       = 1000
	GradientClip    = 0.5

	// Epsilon schedule: exploration fades linearly over the first
	// EpsilonGames episodes, drawn against a 0..EpsilonDraw-1 roll.
	EpsilonGames = 80
	EpsilonDraw  = 200

	// Soft update rate for the target network.
	tau = 0.001
)

// DQN rappresenta la rete neurale: 11 -> 128 -> 128 -> 3 with ReLU between
// the layers.
type DQN struct {
	g      *gorgonia.ExprGraph
	w1, b1 *gorgonia.Node
	w2, b2 *gorgonia.Node
	w3, b3 *gorgonia.Node
	solver gorgonia.Solver
}

// NewDQN crea una nuova rete DQN.
func NewDQN() *DQN {
	g := gorgonia.NewGraph()

	w1 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(InputFeatures, HiddenLayerSize),
		gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	b1 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(1, HiddenLayerSize),
		gorgonia.WithInit(gorgonia.Zeroes()))

	w2 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(HiddenLayerSize, HiddenLayerSize),
		gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	b2 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(1, HiddenLayerSize),
		gorgonia.WithInit(gorgonia.Zeroes()))

	w3 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(HiddenLayerSize, OutputActions),
		gorgonia.WithInit(gorgonia.GlorotU(1.0)))
	b3 := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(1, OutputActions),
		gorgonia.WithInit(gorgonia.Zeroes()))

	return &DQN{
		g:  g,
		w1: w1, b1: b1,
		w2: w2, b2: b2,
		w3: w3, b3: b3,
		solver: gorgonia.NewAdamSolver(
			gorgonia.WithLearnRate(DQNLearningRate),
			gorgonia.WithClip(GradientClip),
			gorgonia.WithL2Reg(1e-6)),
	}
}

func (d *DQN) weights() gorgonia.Nodes {
	return gorgonia.Nodes{d.w1, d.b1, d.w2, d.b2, d.w3, d.b3}
}

// forward costruisce il forward pass simbolico per un batch di stati.
func (d *DQN) forward(states *gorgonia.Node, batchSize int) *gorgonia.Node {
	// Broadcasting del bias via a ones-column multiply.
	expandBias := func(bias *gorgonia.Node) *gorgonia.Node {
		backing := make([]float64, batchSize)
		for i := range backing {
			backing[i] = 1.0
		}
		ones := gorgonia.NodeFromAny(d.g,
			tensor.New(tensor.WithShape(batchSize, 1), tensor.WithBacking(backing)))
		return gorgonia.Must(gorgonia.Mul(ones, bias))
	}

	h1 := gorgonia.Must(gorgonia.Mul(states, d.w1))
	h1 = gorgonia.Must(gorgonia.Add(h1, expandBias(d.b1)))
	h1 = gorgonia.Must(gorgonia.Rectify(h1))

	h2 := gorgonia.Must(gorgonia.Mul(h1, d.w2))
	h2 = gorgonia.Must(gorgonia.Add(h2, expandBias(d.b2)))
	h2 = gorgonia.Must(gorgonia.Rectify(h2))

	out := gorgonia.Must(gorgonia.Mul(h2, d.w3))
	return gorgonia.Must(gorgonia.Add(out, expandBias(d.b3)))
}

func (d *DQN) statesNode(states []float64, batchSize int) *gorgonia.Node {
	backing := make([]float64, len(states))
	copy(backing, states)
	t := tensor.New(tensor.WithBacking(backing), tensor.WithShape(batchSize, InputFeatures))
	return gorgonia.NodeFromAny(d.g, t)
}

// Predict esegue un forward pass e restituisce i valori Q, OutputActions per
// ogni stato nel batch.
func (d *DQN) Predict(states []float64) ([]float64, error) {
	batchSize := len(states) / InputFeatures
	if batchSize == 0 {
		return nil, fmt.Errorf("empty state batch")
	}

	pred := d.forward(d.statesNode(states, batchSize), batchSize)

	vm := gorgonia.NewTapeMachine(d.g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward pass error: %v", err)
	}

	predTensor, ok := pred.Value().(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("invalid prediction tensor type %T", pred.Value())
	}
	predictions := make([]float64, batchSize*OutputActions)
	copy(predictions, predTensor.Data().([]float64))
	return predictions, nil
}

// fit esegue un passo di discesa del gradiente verso i target Q.
func (d *DQN) fit(states, targets []float64, batchSize int) error {
	pred := d.forward(d.statesNode(states, batchSize), batchSize)

	targetBacking := make([]float64, len(targets))
	copy(targetBacking, targets)
	targetNode := gorgonia.NodeFromAny(d.g,
		tensor.New(tensor.WithBacking(targetBacking), tensor.WithShape(batchSize, OutputActions)))

	// MSE loss
	diff := gorgonia.Must(gorgonia.Sub(pred, targetNode))
	loss := gorgonia.Must(gorgonia.Mean(gorgonia.Must(gorgonia.Square(diff))))

	if _, err := gorgonia.Grad(loss, d.weights()...); err != nil {
		return fmt.Errorf("gradient error: %v", err)
	}

	vm := gorgonia.NewTapeMachine(d.g, gorgonia.BindDualValues(d.weights()...))
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return fmt.Errorf("backward pass error: %v", err)
	}
	return d.solver.Step(gorgonia.NodesToValueGrads(d.weights()))
}

// DQNAgent rappresenta l'agente DQN.
type DQNAgent struct {
	dqn       *DQN
	targetDQN *DQN
	replay    *ReplayBuffer

	Discount    float64
	GamesPlayed int

	rng *rand.Rand
}

// NewDQNAgent crea un nuovo agente DQN.
func NewDQNAgent(seed uint64) *DQNAgent {
	return &DQNAgent{
		dqn:       NewDQN(),
		targetDQN: NewDQN(),
		replay:    NewReplayBuffer(MaxMemory, seed),
		Discount:  DQNGamma,
		rng:       newRand(seed),
	}
}

// Epsilon returns the current exploration threshold on the 0..EpsilonDraw
// scale.
func (a *DQNAgent) Epsilon() int {
	e := EpsilonGames - a.GamesPlayed
	if e < 0 {
		return 0
	}
	return e
}

// GetAction seleziona un'azione usando la policy epsilon-greedy.
func (a *DQNAgent) GetAction(state []float64) game.Action {
	if a.rng.Intn(EpsilonDraw) < a.Epsilon() {
		return game.Action(a.rng.Intn(NumActions))
	}

	qValues, err := a.dqn.Predict(state)
	if err != nil {
		// Fall back to a random action rather than aborting the episode.
		return game.Action(a.rng.Intn(NumActions))
	}

	best := 0
	for i := 1; i < NumActions; i++ {
		if qValues[i] > qValues[best] {
			best = i
		}
	}
	return game.Action(best)
}

// Remember memorizza una transizione nel replay buffer.
func (a *DQNAgent) Remember(t Transition) {
	a.replay.Add(t)
}

// TrainShortMemory trains on the single most recent transition.
func (a *DQNAgent) TrainShortMemory(t Transition) {
	a.trainOnBatch([]Transition{t})
}

// TrainLongMemory trains on a random sample from the replay buffer, capped
// at BatchSize.
func (a *DQNAgent) TrainLongMemory() {
	if a.replay.Len() == 0 {
		return
	}
	a.trainOnBatch(a.replay.Sample(BatchSize))
}

// trainOnBatch esegue un passo di training su un batch di transizioni. The
// Bellman target replaces only the taken action's output; the other values
// are copied from the prediction so no gradient flows through them.
func (a *DQNAgent) trainOnBatch(batch []Transition) {
	states := make([]float64, 0, len(batch)*InputFeatures)
	nextStates := make([]float64, 0, len(batch)*InputFeatures)
	for _, t := range batch {
		states = append(states, t.State...)
		nextStates = append(nextStates, t.NextState...)
	}

	currentQ, err := a.dqn.Predict(states)
	if err != nil {
		log.Printf("Error predicting current Q-values: %v", err)
		return
	}
	nextQ, err := a.targetDQN.Predict(nextStates)
	if err != nil {
		log.Printf("Error predicting next Q-values: %v", err)
		return
	}

	targets := make([]float64, len(currentQ))
	copy(targets, currentQ)
	for i, t := range batch {
		qNew := t.Reward
		if !t.Done {
			maxQ := math.Inf(-1)
			for j := 0; j < OutputActions; j++ {
				if nextQ[i*OutputActions+j] > maxQ {
					maxQ = nextQ[i*OutputActions+j]
				}
			}
			qNew = t.Reward + a.Discount*maxQ
		}
		targets[i*OutputActions+t.Action] = qNew
	}

	if err := a.dqn.fit(states, targets, len(batch)); err != nil {
		log.Printf("Error during DQN training step: %v", err)
		return
	}

	// Soft update del target network.
	copyWeights(a.targetDQN, a.dqn)
}

// IncrementGames incrementa il contatore degli episodi giocati.
func (a *DQNAgent) IncrementGames() {
	a.GamesPlayed++
}

// copyWeights copia i pesi dal DQN principale al target network con soft
// update.
func copyWeights(target, source *DQN) {
	tw, sw := target.weights(), source.weights()
	for i := range sw {
		copyTensor(tw[i].Value().(*tensor.Dense), sw[i].Value().(*tensor.Dense), tau)
	}
}

func copyTensor(target, source *tensor.Dense, tau float64) {
	targetData := target.Data().([]float64)
	sourceData := source.Data().([]float64)
	for i := range targetData {
		targetData[i] = tau*sourceData[i] + (1-tau)*targetData[i]
	}
}

// SaveWeights salva i pesi del DQN su file.
func (a *DQNAgent) SaveWeights(filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %v", err)
	}
	defer f.Close()

	weights := map[string]*tensor.Dense{
		"w1": a.dqn.w1.Value().(*tensor.Dense),
		"b1": a.dqn.b1.Value().(*tensor.Dense),
		"w2": a.dqn.w2.Value().(*tensor.Dense),
		"b2": a.dqn.b2.Value().(*tensor.Dense),
		"w3": a.dqn.w3.Value().(*tensor.Dense),
		"b3": a.dqn.b3.Value().(*tensor.Dense),
	}
	if err := gob.NewEncoder(f).Encode(weights); err != nil {
		return fmt.Errorf("failed to encode weights: %v", err)
	}
	return nil
}

// LoadWeights carica i pesi del DQN da file. A missing file leaves the
// freshly initialized network in place.
func (a *DQNAgent) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open weights file: %v", err)
	}
	defer f.Close()

	var weights map[string]*tensor.Dense
	if err := gob.NewDecoder(f).Decode(&weights); err != nil {
		return fmt.Errorf("failed to decode weights: %v", err)
	}

	named := map[string][2]*gorgonia.Node{
		"w1": {a.dqn.w1, a.targetDQN.w1},
		"b1": {a.dqn.b1, a.targetDQN.b1},
		"w2": {a.dqn.w2, a.targetDQN.w2},
		"b2": {a.dqn.b2, a.targetDQN.b2},
		"w3": {a.dqn.w3, a.targetDQN.w3},
		"b3": {a.dqn.b3, a.targetDQN.b3},
	}
	for name, nodes := range named {
		w, ok := weights[name]
		if !ok {
			continue
		}
		if err := tensor.Copy(nodes[0].Value().(*tensor.Dense), w); err != nil {
			return fmt.Errorf("failed to load weight %s: %v", name, err)
		}
		if err := tensor.Copy(nodes[1].Value().(*tensor.Dense), w); err != nil {
			return fmt.Errorf("failed to load weight %s: %v", name, err)
		}
	}
	return nil
}
