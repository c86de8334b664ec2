package qlearning

import (
	"gonum.org/v1/gonum/floats"

	"snake-rl/agent"
)

// MergeTables blends worker tables into one: every state present in any
// table maps to the element-wise arithmetic mean of the vectors from the
// tables that contain it. Tables missing a state contribute nothing to that
// state's average (union merge, not intersection).
func MergeTables(tables []QTable) QTable {
	merged := make(QTable)
	counts := make(map[agent.State]float64)

	for _, table := range tables {
		for state, q := range table {
			if _, ok := merged[state]; !ok {
				merged[state] = make([]float64, len(q))
			}
			floats.Add(merged[state], q)
			counts[state]++
		}
	}
	for state, q := range merged {
		floats.Scale(1/counts[state], q)
	}
	return merged
}
