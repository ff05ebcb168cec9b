package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/config"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, _, err := loadSettings()
		if err != nil {
			return err
		}
		path := settings.GetString("config")
		if path == "" {
			path = paths.Config
		}

		fs := fsops.NewRealFS()
		exists, err := fs.Exists(path)
		if err != nil {
			return err
		}
		if exists && !configInitForce {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		data, err := config.Default().Marshal()
		if err != nil {
			return err
		}
		if err := fs.AtomicWrite(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		if jsonOutput {
			return outputJSON(map[string]string{"path": path})
		}
		PrintSuccess(fmt.Sprintf("Wrote %s", path))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, loaded, err := loadSettings()
		if err != nil {
			return err
		}
		cfg := *loaded
		if cfg.Advisor.APIKey != "" {
			cfg.Advisor.APIKey = "********"
		}
		if jsonOutput {
			return outputJSON(map[string]any{
				"dataDir": paths.Root,
				"config":  &cfg,
			})
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		PrintLabelValue("Data dir", paths.Root)
		fmt.Fprintln(stdout)
		_, err = stdout.Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where state, audit log and config live",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, _, err := loadSettings()
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(paths)
		}
		for _, p := range []struct{ label, path string }{
			{"Data dir", paths.Root},
			{"State", paths.StateJSON},
			{"State (sqlite)", paths.StateDB},
			{"Audit log", paths.ActionsLog},
			{"Config", paths.Config},
		} {
			note := ""
			if _, err := os.Stat(p.path); err != nil {
				note = " (missing)"
			}
			PrintLabelValue(p.label, filepath.Clean(p.path)+note)
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
