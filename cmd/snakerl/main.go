package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"snake-rl/agent"
	"snake-rl/game"
	"snake-rl/qlearning"
	"snake-rl/trainer"
	"snake-rl/ui"
)

const (
	defaultQTablePath = "data/qtable.json"
	defaultDQNPath    = "data/dqn_weights.gob"
)

var (
	boardWidth  int
	boardHeight int
	blockSize   int
	seed        uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "snakerl",
		Short: "Snake reinforcement-learning playground: tabular Q-learning, multi-worker training and a DQN.",
	}

	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.PersistentFlags().IntVar(&boardWidth, "width", game.DefaultWidth, "Board width in pixels")
	rootCmd.PersistentFlags().IntVar(&boardHeight, "height", game.DefaultHeight, "Board height in pixels")
	rootCmd.PersistentFlags().IntVar(&blockSize, "block", game.DefaultBlockSize, "Grid cell size in pixels")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "RNG seed (0 = from clock)")

	rootCmd.AddCommand(newTrainCmd(), newPoolCmd(), newDQNCmd(), newPlayCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func gameConfig(shaping game.RewardShaping) game.Config {
	return game.Config{
		Width:     boardWidth,
		Height:    boardHeight,
		BlockSize: blockSize,
		Shaping:   shaping,
		Seed:      seed,
	}
}

func newTrainCmd() *cobra.Command {
	var (
		episodes int
		target   int
		model    string
		shaped   bool
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a single tabular Q-learning agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			shaping := game.ShapingNone
			if shaped {
				shaping = game.ShapingDistance
			}
			g := game.NewGame(gameConfig(shaping))

			cfg := trainer.FromEnv()
			var display *ui.Renderer
			if cfg.Render {
				display = ui.NewRenderer(boardWidth, boardHeight, blockSize, cfg.FastSim)
				defer display.Close()
				g.SetDisplay(display)
			}

			a := qlearning.NewAgent(qlearning.DefaultHyperparams(), seed)
			if err := a.Load(model); err != nil {
				return err
			}

			t := trainer.NewTrainer(g, a, model)
			best, err := t.Run(episodes, target)
			if err != nil {
				return err
			}
			log.Printf("training finished: best score %d over %d episode(s)", best, len(t.Stats.Episodes))
			return t.Stats.SaveToFile()
		},
	}
	cmd.Flags().IntVar(&episodes, "episodes", 1000, "Episode budget")
	cmd.Flags().IntVar(&target, "target", 0, "Stop once this best score is reached (0 = run the full budget)")
	cmd.Flags().StringVar(&model, "model", defaultQTablePath, "Q-table checkpoint path")
	cmd.Flags().BoolVar(&shaped, "shaped", true, "Use distance-shaped step rewards")
	return cmd
}

func newPoolCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Train a pool of tabular agents in parallel and keep the best worker's Q-table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := trainer.FromEnv()
			p := &trainer.Pool{
				Config:     cfg,
				GameConfig: gameConfig(game.ShapingDistance),
			}
			if cfg.Render {
				p.DisplayFactory = func() game.Display {
					return ui.NewRenderer(boardWidth, boardHeight, blockSize, cfg.FastSim)
				}
			}
			best, err := p.Run(model)
			if err != nil {
				return err
			}
			log.Printf("pool training finished: best overall score %d", best)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", defaultQTablePath, "Q-table checkpoint path")
	return cmd
}

func newDQNCmd() *cobra.Command {
	var (
		target int
		model  string
	)
	cmd := &cobra.Command{
		Use:   "dqn",
		Short: "Train the deep Q-network agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("target") {
				if raw := os.Getenv(trainer.EnvTargetScore); raw != "" {
					if v, err := strconv.Atoi(raw); err == nil && v > 0 {
						target = v
					}
				}
			}

			g := game.NewGame(gameConfig(game.ShapingDistance))
			cfg := trainer.FromEnv()
			var display *ui.Renderer
			if cfg.Render {
				display = ui.NewRenderer(boardWidth, boardHeight, blockSize, cfg.FastSim)
				defer display.Close()
				g.SetDisplay(display)
			}

			a := qlearning.NewDQNAgent(seed)
			if err := a.LoadWeights(model); err != nil {
				return err
			}

			t := trainer.NewDQNTrainer(g, a, model)
			record, err := t.Run(target)
			if err != nil {
				return err
			}
			log.Printf("DQN training finished: record %d over %d game(s)", record, a.GamesPlayed)
			return t.Stats.SaveToFile()
		},
	}
	cmd.Flags().IntVar(&target, "target", 10, "Stop once this record score is reached")
	cmd.Flags().StringVar(&model, "model", defaultDQNPath, "Weights checkpoint path")
	return cmd
}

func newPlayCmd() *cobra.Command {
	var (
		useDQN bool
		model  string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Watch a trained agent play with a near-greedy policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := game.NewGame(gameConfig(game.ShapingNone))

			display := ui.NewRenderer(boardWidth, boardHeight, blockSize, false)
			defer display.Close()
			g.SetDisplay(display)

			var policy func(*game.Game) game.Action
			switch {
			case useDQN:
				if model == "" {
					model = defaultDQNPath
				}
				a := qlearning.NewDQNAgent(seed)
				if err := a.LoadWeights(model); err != nil {
					return err
				}
				if _, err := os.Stat(model); err != nil {
					log.Printf("no trained model found at %s, running with an untrained agent", model)
				}
				// Past the schedule horizon the policy is fully greedy.
				a.GamesPlayed = qlearning.EpsilonGames
				policy = func(g *game.Game) game.Action {
					return a.GetAction(agent.GetState(g).Vector())
				}
			default:
				if model == "" {
					model = defaultQTablePath
				}
				a := qlearning.NewAgent(qlearning.DefaultHyperparams(), seed)
				if err := a.Load(model); err != nil {
					return err
				}
				if _, err := os.Stat(model); err != nil {
					log.Printf("no trained model found at %s, running with an untrained agent", model)
				}
				a.Epsilon = a.EpsilonMin
				policy = func(g *game.Game) game.Action {
					return a.GetAction(agent.GetState(g))
				}
			}

			for !display.ShouldClose() {
				g.Reset()
				for {
					_, done, score := g.PlayStep(policy(g))
					if display.ShouldClose() {
						return nil
					}
					if done {
						fmt.Printf("Score: %d\n", score)
						break
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useDQN, "dqn", false, "Play the DQN agent instead of the tabular one")
	cmd.Flags().StringVar(&model, "model", "", "Checkpoint path (defaults per agent type)")
	return cmd
}
