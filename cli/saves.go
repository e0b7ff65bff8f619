package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List save games found on disk",
	Long: `List every save directory of the selected game family, whether or not
it has a timeline yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		saves, err := s.manager.DiscoverSaveGames(s.family)
		if err != nil {
			return fmt.Errorf("failed to discover save games: %w", err)
		}
		if len(saves) == 0 {
			fmt.Printf("No save games found for %s.\n", s.family.DisplayName)
			return nil
		}

		fmt.Printf("Save games for %s:\n", s.family.DisplayName)
		for _, save := range saves {
			marker := " "
			if _, ok := s.manager.GetTimeline(s.family, save.Name); ok {
				marker = "*"
			}
			fmt.Printf("  %s %s\n", marker, save.Name)
		}
		fmt.Println("\n(* = has a timeline)")
		return nil
	},
}
