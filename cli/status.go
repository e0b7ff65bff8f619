package cli

import (
	"fmt"

	"github.com/javanhut/savepoint/internal/colors"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <save>",
	Short: "Show a save game's current branch, checkpoint, and pending changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		save := s.save(args[0])
		tree, ok := s.manager.GetTimeline(s.family, save.Name)
		if !ok {
			return fmt.Errorf("no timeline for save game %q", save.Name)
		}

		fmt.Printf("Save game:  %s (%s)\n", colors.Bold(tree.Name), s.family.DisplayName)
		fmt.Printf("Branch:     %s\n", colors.Branch(tree.CurrentBranch.Name))
		fmt.Printf("Checkpoint: %s %s\n",
			colors.Hash(shortHash(tree.CurrentCheckpoint.Hash)), tree.CurrentCheckpoint.Message)

		status := s.manager.GetRepositoryStatus(save)
		if status == nil {
			fmt.Println("Changes:    (unavailable)")
			return nil
		}
		if status.Clean() {
			fmt.Println("Changes:    none")
			return nil
		}
		fmt.Println("Changes since last checkpoint:")
		for _, f := range status.Added {
			fmt.Printf("  added:    %s\n", colors.Added(f))
		}
		for _, f := range status.Modified {
			fmt.Printf("  modified: %s\n", colors.Modified(f))
		}
		for _, f := range status.Removed {
			fmt.Printf("  removed:  %s\n", colors.Removed(f))
		}
		return nil
	},
}
