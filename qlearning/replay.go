package qlearning

import "golang.org/x/exp/rand"

// Transition rappresenta un singolo step nell'ambiente.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// ReplayBuffer memorizza le esperienze per il training. It is a capped
// circular buffer: once full, the oldest transition is evicted.
type ReplayBuffer struct {
	buffer   []Transition
	maxSize  int
	position int
	size     int
	rng      *rand.Rand
}

// NewReplayBuffer crea un nuovo buffer di replay.
func NewReplayBuffer(maxSize int, seed uint64) *ReplayBuffer {
	return &ReplayBuffer{
		buffer:  make([]Transition, maxSize),
		maxSize: maxSize,
		rng:     newRand(seed),
	}
}

// Add aggiunge una transizione al buffer.
func (b *ReplayBuffer) Add(t Transition) {
	b.buffer[b.position] = t
	b.position = (b.position + 1) % b.maxSize
	if b.size < b.maxSize {
		b.size++
	}
}

// Sample restituisce un batch casuale di transizioni, at most batchSize and
// at most the number stored.
func (b *ReplayBuffer) Sample(batchSize int) []Transition {
	if batchSize > b.size {
		batchSize = b.size
	}
	batch := make([]Transition, batchSize)
	for i := 0; i < batchSize; i++ {
		batch[i] = b.buffer[b.rng.Intn(b.size)]
	}
	return batch
}

// Len returns the number of stored transitions.
func (b *ReplayBuffer) Len() int {
	return b.size
}
