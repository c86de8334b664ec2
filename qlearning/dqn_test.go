package qlearning

import (
	"path/filepath"
	"testing"

	"snake-rl/game"
)

func TestDQNPredictShape(t *testing.T) {
	d := NewDQN()

	single, err := d.Predict(make([]float64, InputFeatures))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(single) != OutputActions {
		t.Fatalf("single-state prediction has %d values, want %d", len(single), OutputActions)
	}

	batch, err := d.Predict(make([]float64, 2*InputFeatures))
	if err != nil {
		t.Fatalf("Predict batch: %v", err)
	}
	if len(batch) != 2*OutputActions {
		t.Fatalf("batch prediction has %d values, want %d", len(batch), 2*OutputActions)
	}
}

func TestDQNAgentGreedyActionInRange(t *testing.T) {
	a := NewDQNAgent(1)
	a.GamesPlayed = EpsilonGames // schedule exhausted, fully greedy

	state := make([]float64, InputFeatures)
	state[0] = 1

	action := a.GetAction(state)
	if action < 0 || action >= game.Action(NumActions) {
		t.Fatalf("action %d outside the action space", action)
	}
	// Greedy policy on a fixed network must be stable.
	for i := 0; i < 5; i++ {
		if got := a.GetAction(state); got != action {
			t.Fatalf("greedy action changed: %d != %d", got, action)
		}
	}
}

func TestDQNSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dqn_weights.gob")

	saved := NewDQNAgent(3)
	saved.GamesPlayed = EpsilonGames // fully greedy

	// Nudge the weights away from their initialization before saving.
	for i := 0; i < 5; i++ {
		state := make([]float64, InputFeatures)
		state[i%InputFeatures] = 1
		next := make([]float64, InputFeatures)
		next[(i+1)%InputFeatures] = 1
		saved.TrainShortMemory(Transition{State: state, Action: i % NumActions, Reward: 1, NextState: next})
	}
	if err := saved.SaveWeights(path); err != nil {
		t.Fatalf("SaveWeights: %v", err)
	}

	loaded := NewDQNAgent(99) // different seed, different init
	loaded.GamesPlayed = EpsilonGames
	if err := loaded.LoadWeights(path); err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}

	// A reloaded network must reproduce the greedy policy per state.
	for i := 0; i < 4; i++ {
		state := make([]float64, InputFeatures)
		state[i] = 1
		state[InputFeatures-1-i] = 1
		if got, want := loaded.GetAction(state), saved.GetAction(state); got != want {
			t.Errorf("state %d: loaded greedy action = %d, saved = %d", i, got, want)
		}
	}
}

func TestDQNLoadMissingFileFallsBack(t *testing.T) {
	a := NewDQNAgent(1)
	a.GamesPlayed = EpsilonGames

	if err := a.LoadWeights(filepath.Join(t.TempDir(), "nope.gob")); err != nil {
		t.Fatalf("LoadWeights on a missing file: %v", err)
	}

	// The untrained network still answers with a valid action.
	state := make([]float64, InputFeatures)
	state[0] = 1
	if action := a.GetAction(state); action < 0 || action >= game.Action(NumActions) {
		t.Fatalf("action %d outside the action space", action)
	}
}

func TestDQNEpsilonSchedule(t *testing.T) {
	a := NewDQNAgent(1)

	if a.Epsilon() != EpsilonGames {
		t.Errorf("initial epsilon = %d, want %d", a.Epsilon(), EpsilonGames)
	}
	for i := 0; i < EpsilonGames+10; i++ {
		a.IncrementGames()
	}
	if a.Epsilon() != 0 {
		t.Errorf("epsilon after schedule = %d, want 0", a.Epsilon())
	}
}
