package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/engine"
)

var setRootCmd = &cobra.Command{
	Use:   "root <path>",
	Short: "Set the download folder to organize",
	Long: `Set the download folder to organize.

Surrounding whitespace and quotes are stripped, so a path pasted from a file
manager works as is. After switching to a different folder, run scan before
suggest or apply; existing items are kept until then.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			result, err := s.SetRoot(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(result)
			}
			PrintSuccess(fmt.Sprintf("Root set to %s", result.Root))
			PrintLabelValue("Mode", string(result.Mode))
			return nil
		})
	},
}

var modeCmd = &cobra.Command{
	Use:   "mode <move|copy>",
	Short: "Choose whether apply moves or copies files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			result, err := s.SetMode(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(result)
			}
			PrintSuccess(fmt.Sprintf("Apply mode set to %s", result.Mode))
			return nil
		})
	},
}

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List the destination folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			folders := s.Taxonomy().Options()
			if jsonOutput {
				return outputJSON(map[string]any{
					"allowedFolders": folders,
					"fallbackFolder": s.Taxonomy().Fallback,
				})
			}
			PrintSection("Destination Folders")
			PrintList(folders, 1)
			fmt.Fprintln(stdout)
			PrintLabelValue("Fallback", s.Taxonomy().Fallback)
			return nil
		})
	},
}

// printStatus renders the registry summary.
func printStatus(result *engine.StatusResult) {
	PrintSection("Status")
	root := result.Root
	if root == "" {
		root = "(not set, run 'organizer root <path>')"
	}
	PrintLabelValue("Root", root)
	PrintLabelValue("Mode", string(result.Mode))
	PrintLabelValue("Items", fmt.Sprintf("%d total, %d candidate, %d never, %d done",
		result.Counts.Total, result.Counts.Candidate, result.Counts.Never, result.Counts.Done))
	PrintLabelValue("Proposals", fmt.Sprintf("%d suggested, %d approved", result.Suggested, result.Approved))
	if result.RescanRequired {
		PrintWarning("Items belong to a previous root; run 'organizer scan' before suggest or apply")
	}
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the root, mode and item counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			result, err := s.Status()
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(result)
			}
			printStatus(result)
			return nil
		})
	},
}
