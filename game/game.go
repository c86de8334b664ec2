package game

import (
	"time"

	"golang.org/x/exp/rand"
)

type Point struct {
	X, Y int
}

// Display draws the current game state. The simulation never depends on a
// display being present; headless runs simply skip the call.
type Display interface {
	Draw(g *Game)
}

// RewardShaping selects the reward signal for non-terminal, non-food steps.
type RewardShaping int

const (
	// ShapingNone yields reward 0 for a plain step.
	ShapingNone RewardShaping = iota
	// ShapingDistance yields +1 when the Manhattan distance to the food
	// decreased, -1 otherwise. Denser signal, faster learning.
	ShapingDistance
)

const (
	DefaultWidth     = 400
	DefaultHeight    = 400
	DefaultBlockSize = 20

	RewardFood  = 10
	RewardDeath = -10
)

// Config describes a game board. Zero values fall back to the defaults; a
// zero Seed seeds the RNG from the wall clock.
type Config struct {
	Width     int
	Height    int
	BlockSize int
	Shaping   RewardShaping
	Seed      uint64
}

// Game simulates one Snake episode at a time. Coordinates are in pixels and
// advance in BlockSize steps.
type Game struct {
	Width     int
	Height    int
	BlockSize int

	snake     []Point // head first
	direction Direction
	food      Point
	score     int
	steps     int

	shaping RewardShaping
	rng     *rand.Rand
	display Display
}

// NewGame crea una nuova partita e la porta allo stato iniziale.
func NewGame(cfg Config) *Game {
	if cfg.Width == 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height == 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	g := &Game{
		Width:     cfg.Width,
		Height:    cfg.Height,
		BlockSize: cfg.BlockSize,
		shaping:   cfg.Shaping,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}
	g.Reset()
	return g
}

// Reset reinitializes the snake (length 3, centered, heading right), zeroes
// the score and places fresh food.
func (g *Game) Reset() {
	head := Point{X: g.Width / 2, Y: g.Height / 2}
	g.snake = []Point{
		head,
		{X: head.X - g.BlockSize, Y: head.Y},
		{X: head.X - 2*g.BlockSize, Y: head.Y},
	}
	g.direction = Right
	g.score = 0
	g.steps = 0
	g.placeFood()
}

// PlayStep esegue un singolo passo di gioco. It returns the step reward,
// whether the episode terminated, and the current score.
func (g *Game) PlayStep(action Action) (reward float64, done bool, score int) {
	prevDist := manhattan(g.Head(), g.food)

	g.direction = g.direction.Turn(action)
	delta := g.direction.Delta()
	head := g.Head()
	newHead := Point{X: head.X + delta.X*g.BlockSize, Y: head.Y + delta.Y*g.BlockSize}
	g.snake = append([]Point{newHead}, g.snake...)
	g.steps++

	if g.IsCollision(newHead) {
		return RewardDeath, true, g.score
	}

	if newHead == g.food {
		g.score++
		reward = RewardFood
		if !g.placeFood() {
			// The snake fills the board: nothing left to eat.
			done = true
		}
	} else {
		if g.shaping == ShapingDistance {
			if manhattan(newHead, g.food) < prevDist {
				reward = 1
			} else {
				reward = -1
			}
		}
		g.snake = g.snake[:len(g.snake)-1]
	}

	if g.display != nil {
		g.display.Draw(g)
	}
	return reward, done, g.score
}

// IsCollision reports whether the given point hits a wall or the snake's
// body. The head itself is excluded, so the predicate also works for
// hypothetical neighbour cells probed by the agent's danger sensing.
func (g *Game) IsCollision(p Point) bool {
	if p.X < 0 || p.X >= g.Width || p.Y < 0 || p.Y >= g.Height {
		return true
	}
	for _, part := range g.snake[1:] {
		if p == part {
			return true
		}
	}
	return false
}

// placeFood posiziona il cibo su una cella libera. Rejection sampling is
// capped at one draw per cell, after which the board is scanned linearly;
// false means no free cell exists.
func (g *Game) placeFood() bool {
	cols := g.Width / g.BlockSize
	rows := g.Height / g.BlockSize

	for attempt := 0; attempt < cols*rows; attempt++ {
		p := Point{
			X: g.rng.Intn(cols) * g.BlockSize,
			Y: g.rng.Intn(rows) * g.BlockSize,
		}
		if !g.occupied(p) {
			g.food = p
			return true
		}
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := Point{X: x * g.BlockSize, Y: y * g.BlockSize}
			if !g.occupied(p) {
				g.food = p
				return true
			}
		}
	}
	return false
}

func (g *Game) occupied(p Point) bool {
	for _, part := range g.snake {
		if p == part {
			return true
		}
	}
	return false
}

func (g *Game) Head() Point {
	return g.snake[0]
}

// Body returns the snake's cells, head first.
func (g *Game) Body() []Point {
	return g.snake
}

func (g *Game) Food() Point {
	return g.food
}

func (g *Game) Direction() Direction {
	return g.direction
}

func (g *Game) Score() int {
	return g.score
}

// Steps returns the number of steps taken since the last Reset.
func (g *Game) Steps() int {
	return g.steps
}

// SetFood places the food at a fixed cell, for scripted scenarios.
func (g *Game) SetFood(p Point) {
	g.food = p
}

// SetDirection forces the current heading, for scripted scenarios.
func (g *Game) SetDirection(d Direction) {
	g.direction = d
}

// SetDisplay attaches a rendering surface. Pass nil to go headless.
func (g *Game) SetDisplay(d Display) {
	g.display = d
}
