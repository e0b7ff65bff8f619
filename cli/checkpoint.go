package cli

import (
	"fmt"

	"github.com/javanhut/savepoint/internal/colors"
	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:     "checkpoint",
	Aliases: []string{"cp"},
	Short:   "Create and restore checkpoints",
}

var checkpointMessage string

func init() {
	checkpointCreateCmd.Flags().StringVarP(&checkpointMessage, "message", "m", "", "Checkpoint message (required)")
	checkpointCreateCmd.MarkFlagRequired("message")
}

var checkpointCreateCmd = &cobra.Command{
	Use:   "create <save> -m <message>",
	Short: "Checkpoint the current state of a save game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		cp, err := s.manager.CreateCheckpoint(s.save(args[0]), checkpointMessage)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint: %w", err)
		}
		fmt.Printf("Checkpoint %s: %s\n", colors.Hash(shortHash(cp.Hash)), cp.Message)
		return nil
	},
}

var checkpointRestoreCmd = &cobra.Command{
	Use:   "restore <save> <checkpoint>",
	Short: "Restore a save game to a checkpoint",
	Long: `Restore the save directory to a checkpoint, given by full hash or unique
prefix. Anything not checkpointed is discarded.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		save := s.save(args[0])
		cp, err := s.findCheckpoint(save, "", args[1])
		if err != nil {
			return err
		}
		if s.manager.HasUncommittedChanges(save) {
			fmt.Println(colors.Warning("Warning: discarding uncommitted changes."))
		}
		if err := s.manager.RestoreCheckpoint(save, cp); err != nil {
			return fmt.Errorf("failed to restore checkpoint: %w", err)
		}
		fmt.Printf("Restored '%s' to %s: %s\n", save.Name, colors.Hash(shortHash(cp.Hash)), cp.Message)
		return nil
	},
}
