package cli

import (
	"fmt"

	"github.com/javanhut/savepoint/internal/colors"
	"github.com/spf13/cobra"
)

var (
	historyBranch string
	historyLimit  int
)

func init() {
	historyCmd.Flags().StringVar(&historyBranch, "branch", "", "Branch to show (default: current)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Limit number of checkpoints to show")
}

var historyCmd = &cobra.Command{
	Use:   "history <save>",
	Short: "Show checkpoint history of a save game",
	Long: `Show the checkpoint history of a save game, newest first.

Examples:
  savepoint history Hero1
  savepoint history Hero1 --limit 10
  savepoint history Hero1 --branch lab-raid`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		save := s.save(args[0])
		checkpoints := s.manager.GetCommitHistory(save, historyBranch, historyLimit)
		if len(checkpoints) == 0 {
			fmt.Printf("No history for '%s'.\n", save.Name)
			return nil
		}

		for _, cp := range checkpoints {
			fmt.Printf("%s  %s  %s\n",
				colors.Hash(shortHash(cp.Hash)),
				colors.Muted(cp.Timestamp.Format("2006-01-02 15:04")),
				cp.Message)
		}
		return nil
	},
}
