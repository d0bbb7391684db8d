// arcade is a terminal arcade for tile-match and dodge with a shared
// leaderboard, playable locally, over SSH, or through the HTTP API.
//
// Usage:
//
//	arcade list              - List available games
//	arcade play <game>       - Play a game
//	arcade menu              - Start menu to pick games interactively
//	arcade serve             - Start SSH server for remote play
//	arcade api               - Start the HTTP leaderboard API
//	arcade scores <game>     - Show the leaderboard for a game
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible gameplay
//	--db <path>     - Set database path (default: ~/.arcade/scores.db)
//	--name <name>   - Player name for leaderboard entries
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/minigames/internal/core"
	"github.com/vovakirdan/minigames/internal/platform/tui"
	"github.com/vovakirdan/minigames/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/minigames/internal/games/dodge"
	_ "github.com/vovakirdan/minigames/internal/games/tilematch"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
	flagName   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Minigames - tile-match and dodge in your terminal",
	Long: `Minigames is a terminal arcade with two games and a shared leaderboard.

Available commands:
  list     - Show all available games
  play     - Play a specific game directly
  menu     - Interactive game picker menu
  serve    - Start SSH server for remote play
  api      - Start the HTTP leaderboard API
  scores   - View the leaderboard

Examples:
  arcade list
  arcade play tilematch
  arcade menu --name Kim
  arcade serve --ssh :2222
  arcade api --store sqlite
  arcade scores dodge`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagName, "name", "", "Player name for the leaderboard (default: $USER)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(scoresCmd)
}

// runtimeConfig builds the game config from the terminal size and global flags.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// playerName returns --name, falling back to the login name.
func playerName() string {
	if flagName != "" {
		return flagName
	}
	return tui.PlayerName(os.Getenv("USER"))
}

// openRecorder opens the scores database and the local leaderboard gate.
// Without a database the games still run, offline.
func openRecorder() (*storage.Store, *tui.Recorder) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return nil, nil
	}

	gate, err := tui.NewLocalGate(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: leaderboard disabled: %v\n", err)
	}
	return store, tui.NewRecorder(store, gate, tui.LocalIP, playerName())
}
