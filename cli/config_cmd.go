package cli

import (
	"fmt"

	"github.com/javanhut/savepoint/internal/colors"
	"github.com/javanhut/savepoint/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set configuration options",
	Long: `Get and set savepoint configuration options, stored in ~/.savepointconfig.

Examples:
  savepoint config user.name "Your Name"
  savepoint config user.email "you@example.com"
  savepoint config core.datadir /mnt/games/savepoint
  savepoint config --list
  savepoint config user.name`,
	RunE: runConfig,
}

var configList bool

func init() {
	configCmd.Flags().BoolVar(&configList, "list", false, "List all configuration")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configList {
		return listConfig()
	}
	if len(args) == 1 {
		return getConfigValue(args[0])
	}
	if len(args) == 2 {
		return setConfigValue(args[0], args[1])
	}
	return fmt.Errorf("invalid usage, see: savepoint config --help")
}

func listConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(colors.Bold("User configuration:"))
	fmt.Printf("  user.name  = %s\n", orUnset(cfg.User.Name))
	fmt.Printf("  user.email = %s\n", orUnset(cfg.User.Email))
	fmt.Println(colors.Bold("Core configuration:"))
	fmt.Printf("  core.datadir = %s\n", orUnset(cfg.Core.DataDir))
	fmt.Printf("  core.debug   = %v\n", cfg.Core.Debug)
	return nil
}

func orUnset(value string) string {
	if value == "" {
		return colors.Muted("(not set)")
	}
	return value
}

func getConfigValue(key string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch key {
	case "user.name":
		fmt.Println(cfg.User.Name)
	case "user.email":
		fmt.Println(cfg.User.Email)
	case "core.datadir":
		fmt.Println(cfg.Core.DataDir)
	case "core.debug":
		fmt.Println(cfg.Core.Debug)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setConfigValue(key, value string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch key {
	case "user.name":
		cfg.User.Name = value
	case "user.email":
		cfg.User.Email = value
	case "core.datadir":
		cfg.Core.DataDir = value
	case "core.debug":
		cfg.Core.Debug = value == "true" || value == "1"
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := config.SaveGlobalConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
