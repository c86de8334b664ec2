package agent

import "snake-rl/game"

// Feature bit positions within State. The layout mirrors the order the
// features are sensed in: danger relative to the heading, heading one-hot,
// then food direction relative to the head.
const (
	DangerStraight = iota
	DangerRight
	DangerLeft
	MovingLeft
	MovingRight
	MovingUp
	MovingDown
	FoodLeft
	FoodRight
	FoodUp
	FoodDown

	NumFeatures
)

// State packs the 11 binary observation features into the low bits of an
// integer, smallest feature index first. It is a lossy projection of the
// board: everything but local danger, heading and food bearing is discarded.
type State uint16

// GetState deriva lo stato osservato dall'agente. Pure: the game is not
// mutated, danger flags come from probing hypothetical neighbour cells.
func GetState(g *game.Game) State {
	head := g.Head()
	dir := g.Direction()
	food := g.Food()

	probe := func(d game.Direction) game.Point {
		delta := d.Delta()
		return game.Point{
			X: head.X + delta.X*g.BlockSize,
			Y: head.Y + delta.Y*g.BlockSize,
		}
	}

	var s State
	s.set(DangerStraight, g.IsCollision(probe(dir)))
	s.set(DangerRight, g.IsCollision(probe(dir.TurnRight())))
	s.set(DangerLeft, g.IsCollision(probe(dir.TurnLeft())))
	s.set(MovingLeft, dir == game.Left)
	s.set(MovingRight, dir == game.Right)
	s.set(MovingUp, dir == game.Up)
	s.set(MovingDown, dir == game.Down)
	s.set(FoodLeft, food.X < head.X)
	s.set(FoodRight, food.X > head.X)
	s.set(FoodUp, food.Y < head.Y)
	s.set(FoodDown, food.Y > head.Y)
	return s
}

func (s *State) set(bit int, v bool) {
	if v {
		*s |= 1 << bit
	}
}

// Bit reports whether the feature at the given position is set.
func (s State) Bit(bit int) bool {
	return s&(1<<bit) != 0
}

// Vector expands the packed state into the 11-dimensional float vector fed
// to the neural learner.
func (s State) Vector() []float64 {
	v := make([]float64, NumFeatures)
	for i := range v {
		if s.Bit(i) {
			v[i] = 1
		}
	}
	return v
}
