package cli

import (
	"fmt"
	"sort"

	"github.com/javanhut/savepoint/internal/colors"
	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:     "timeline",
	Aliases: []string{"tl"},
	Short:   "Manage save game timelines",
}

var timelineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List timelines of the selected game family",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		trees := s.manager.GetTimelinesForGame(s.family)
		if len(trees) == 0 {
			fmt.Printf("No timelines for %s. Create one with 'savepoint timeline create <save>'.\n",
				s.family.DisplayName)
			return nil
		}
		sort.Slice(trees, func(i, j int) bool { return trees[i].Name < trees[j].Name })

		for _, tree := range trees {
			fmt.Printf("%s\n", colors.Bold(tree.Name))
			fmt.Printf("  branch:     %s (%d branches)\n",
				colors.Branch(tree.CurrentBranch.Name), len(tree.Branches))
			fmt.Printf("  checkpoint: %s %s\n",
				colors.Hash(shortHash(tree.CurrentCheckpoint.Hash)), tree.CurrentCheckpoint.Message)
			fmt.Printf("  updated:    %s\n", colors.Muted(tree.LastUpdated.Format("2006-01-02 15:04:05")))
		}
		return nil
	},
}

var timelineCreateCmd = &cobra.Command{
	Use:   "create <save>",
	Short: "Create a timeline for a save game",
	Long: `Create a timeline for a save game. The save directory's current content
becomes the first checkpoint on the main branch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		tree, err := s.manager.CreateTimeline(s.save(args[0]))
		if err != nil {
			return fmt.Errorf("failed to create timeline: %w", err)
		}
		fmt.Printf("Created timeline for '%s' on branch %s\n", tree.Name, tree.MainBranch.Name)
		fmt.Printf("Initial checkpoint: %s\n", shortHash(tree.CurrentCheckpoint.Hash))
		return nil
	},
}

var timelineDeleteCmd = &cobra.Command{
	Use:   "delete <save>",
	Short: "Delete a save game's timeline",
	Long: `Delete a timeline: its branches and worktree registration are removed.
The save files stay on disk and existing checkpoints remain reachable by hash.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.manager.DeleteTimeline(s.save(args[0])); err != nil {
			return fmt.Errorf("failed to delete timeline: %w", err)
		}
		fmt.Printf("Deleted timeline for '%s'. Save files were not touched.\n", args[0])
		return nil
	},
}
