package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"snake-rl/game"
)

const defaultFPS = 15

// Renderer draws the board, snake, food and score overlay with raylib. It
// satisfies game.Display.
type Renderer struct {
	blockSize int32
}

// NewRenderer apre la finestra di gioco. With fastSim the frame rate is
// uncapped so rendering never throttles the simulation.
func NewRenderer(width, height, blockSize int, fastSim bool) *Renderer {
	rl.InitWindow(int32(width), int32(height), "Snake RL")
	if fastSim {
		rl.SetTargetFPS(0)
	} else {
		rl.SetTargetFPS(defaultFPS)
	}
	return &Renderer{blockSize: int32(blockSize)}
}

// Draw disegna lo stato corrente della partita.
func (r *Renderer) Draw(g *game.Game) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	for _, p := range g.Body() {
		rl.DrawRectangle(int32(p.X), int32(p.Y), r.blockSize, r.blockSize, rl.Green)
	}

	food := g.Food()
	rl.DrawRectangle(int32(food.X), int32(food.Y), r.blockSize, r.blockSize, rl.Red)

	rl.DrawText(fmt.Sprintf("Score: %d", g.Score()), 10, 10, 20, rl.RayWhite)
	rl.EndDrawing()
}

// ShouldClose reports whether the user asked to close the window.
func (r *Renderer) ShouldClose() bool {
	return rl.WindowShouldClose()
}

// Close chiude la finestra di gioco.
func (r *Renderer) Close() {
	rl.CloseWindow()
}
