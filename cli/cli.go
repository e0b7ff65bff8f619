package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/javanhut/savepoint/internal/config"
	"github.com/javanhut/savepoint/internal/events"
	"github.com/javanhut/savepoint/internal/paths"
	"github.com/javanhut/savepoint/internal/timeline"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "savepoint",
	Short: "Savepoint is a save-game timeline manager",
	Long: `Savepoint versions your save games. Every save directory gets a timeline
of checkpoints you can branch and rewind, so a bad run is never the end.`,
	SilenceUsage: true,
}

var gameFlag string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&gameFlag, "game", "g", "dda", "Game family (dda, bn, other)")

	rootCmd.AddCommand(savesCmd)

	rootCmd.AddCommand(timelineCmd)
	timelineCmd.AddCommand(timelineListCmd, timelineCreateCmd, timelineDeleteCmd)

	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointCreateCmd, checkpointRestoreCmd)

	rootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(branchCreateCmd, branchSwitchCmd, branchListCmd)

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
}

// session bundles everything a command needs for one invocation.
type session struct {
	cfg     *config.Config
	svc     *paths.Service
	manager *timeline.Manager
	family  paths.GameFamily
}

// openSession loads configuration, sets up logging, and initializes the
// manager for the selected game family.
func openSession() (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := slog.LevelWarn
	if cfg.Core.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}

	registry := paths.NewRegistry()
	family := registry.ByName(gameFlag)
	svc := paths.NewService(dataDir)
	if _, err := svc.EnsureSavesDir(family); err != nil {
		return nil, fmt.Errorf("failed to prepare saves directory: %w", err)
	}

	manager := timeline.NewManager(cfg, svc, events.NewBus())
	if err := manager.Initialize(family); err != nil {
		return nil, fmt.Errorf("failed to initialize %s: %w", family.DisplayName, err)
	}

	return &session{cfg: cfg, svc: svc, manager: manager, family: family}, nil
}

func (s *session) close() {
	s.manager.Shutdown()
}

func (s *session) save(name string) timeline.SaveGame {
	return timeline.SaveGame{
		Name:   name,
		Family: s.family,
		Path:   filepath.Join(s.svc.SavesDir(s.family), name),
	}
}

// findCheckpoint resolves a full hash or unique hash prefix against a
// branch's history. An empty branch name searches the current branch.
func (s *session) findCheckpoint(save timeline.SaveGame, branch, ref string) (*timeline.Checkpoint, error) {
	if len(ref) < 6 {
		return nil, fmt.Errorf("checkpoint reference %q too short, give at least 6 hex characters", ref)
	}
	var match *timeline.Checkpoint
	for _, cp := range s.manager.GetCommitHistory(save, branch, 0) {
		if strings.HasPrefix(cp.Hash, ref) {
			if match != nil {
				return nil, fmt.Errorf("checkpoint reference %q is ambiguous", ref)
			}
			match = cp
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no checkpoint matching %q", ref)
	}
	return match, nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
