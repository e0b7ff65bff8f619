package cli

import (
	"fmt"
	"sort"

	"github.com/javanhut/savepoint/internal/colors"
	"github.com/javanhut/savepoint/internal/timeline"
	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage timeline branches",
}

var branchFrom string

func init() {
	branchCreateCmd.Flags().StringVar(&branchFrom, "from", "", "Checkpoint to branch from (hash or prefix, default: current)")
}

var branchCreateCmd = &cobra.Command{
	Use:   "create <save> <name>",
	Short: "Create a branch without switching to it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		save := s.save(args[0])
		var from *timeline.Checkpoint
		if branchFrom != "" {
			cp, err := s.findCheckpoint(save, "", branchFrom)
			if err != nil {
				return err
			}
			from = cp
		}

		branch, err := s.manager.CreateBranch(save, args[1], from)
		if err != nil {
			return fmt.Errorf("failed to create branch: %w", err)
		}
		fmt.Printf("Created branch %s at %s\n",
			colors.Branch(branch.Name), colors.Hash(shortHash(branch.Head)))
		return nil
	},
}

var branchSwitchCmd = &cobra.Command{
	Use:   "switch <save> <name>",
	Short: "Switch a save game to another branch",
	Long: `Switch the save directory onto another branch, replacing its content with
that branch's latest checkpoint. Uncommitted changes are discarded.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		save := s.save(args[0])
		if s.manager.HasUncommittedChanges(save) {
			fmt.Println(colors.Warning("Warning: discarding uncommitted changes."))
		}
		if err := s.manager.SwitchBranch(save, args[1]); err != nil {
			return fmt.Errorf("failed to switch branch: %w", err)
		}
		tree, _ := s.manager.GetTimeline(s.family, save.Name)
		fmt.Printf("Switched '%s' to branch %s\n", save.Name, colors.Branch(tree.CurrentBranch.Name))
		return nil
	},
}

var branchListCmd = &cobra.Command{
	Use:   "list <save>",
	Short: "List branches of a save game's timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		tree, ok := s.manager.GetTimeline(s.family, args[0])
		if !ok {
			return fmt.Errorf("no timeline for save game %q", args[0])
		}

		names := make([]string, 0, len(tree.Branches))
		for name := range tree.Branches {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			branch := tree.Branches[name]
			marker := " "
			if branch == tree.CurrentBranch {
				marker = "*"
			}
			fmt.Printf("%s %s (%s)\n", marker, colors.Branch(name), colors.Hash(shortHash(branch.Head)))
		}
		return nil
	},
}
