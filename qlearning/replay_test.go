package qlearning

import "testing"

func transitionWithReward(r float64) Transition {
	return Transition{State: []float64{r}, Reward: r, NextState: []float64{r}}
}

func TestReplayBufferEvictsOldest(t *testing.T) {
	b := NewReplayBuffer(3, 1)

	for i := 1; i <= 4; i++ {
		b.Add(transitionWithReward(float64(i)))
	}

	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}
	rewards := map[float64]bool{}
	for _, tr := range b.buffer {
		rewards[tr.Reward] = true
	}
	if rewards[1] {
		t.Error("oldest transition not evicted")
	}
	for _, want := range []float64{2, 3, 4} {
		if !rewards[want] {
			t.Errorf("transition with reward %v missing", want)
		}
	}
}

func TestReplayBufferSampleCaps(t *testing.T) {
	b := NewReplayBuffer(10, 1)
	for i := 0; i < 4; i++ {
		b.Add(transitionWithReward(float64(i)))
	}

	if got := len(b.Sample(100)); got != 4 {
		t.Errorf("oversized sample returned %d transitions, want 4", got)
	}
	if got := len(b.Sample(2)); got != 2 {
		t.Errorf("sample of 2 returned %d transitions", got)
	}
}
