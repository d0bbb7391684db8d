package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/minigames/internal/games/dodge"
	"github.com/vovakirdan/minigames/internal/games/tilematch"
	"github.com/vovakirdan/minigames/internal/platform/tui"
	"github.com/vovakirdan/minigames/internal/registry"
)

var flagConfig string

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Play a game",
	Long: `Start playing the specified game.

Tile Match controls:
  Arrows/WASD  - Move the cursor
  Space/Enter  - Select or deselect a tile
  P            - Pause

Dodge controls:
  Arrows/WASD  - Move
  P            - Pause

Common:
  R            - Restart (after game over)
  Esc/B        - Leave (when paused or over)
  Q/Ctrl+C     - Quit

Examples:
  arcade play tilematch
  arcade play dodge --name Kim
  arcade play dodge --config ./my-dodge.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
}

// applyGameConfig points the game at --config before it is created.
func applyGameConfig(gameID string) {
	switch gameID {
	case "tilematch":
		tilematch.SetConfigPath(flagConfig)
	case "dodge":
		dodge.SetConfigPath(flagConfig)
	}
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := args[0]

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown game %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available games.")
		os.Exit(1)
	}

	applyGameConfig(gameID)
	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store, rec := openRecorder()
	runErr := tui.Run(game, rec, runtimeConfig())

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
