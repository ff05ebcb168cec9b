package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/clock"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/engine"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

var (
	scanMerge bool

	reviewFilter string
	reviewQuery  string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rebuild the item list from the root folder",
	Long: `Walk the root folder and register every regular file.

By default the item list is replaced and every file starts over as a
candidate. With --merge, files still on disk keep their tags, suggestions,
edits and approval, and files already organized stay listed as done.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			result, err := s.Scan(&engine.ScanRequest{Merge: scanMerge})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(result)
			}

			PrintSuccess(fmt.Sprintf("Found %s", PrintCount(result.Found, "file", "files")))
			if scanMerge {
				PrintLabelValue("Kept", fmt.Sprintf("%d", result.Kept))
				PrintLabelValue("Dropped", fmt.Sprintf("%d", result.Dropped))
			}
			if result.Truncated {
				PrintWarning(fmt.Sprintf("Stopped at the file limit (%d); raise limits.max_files_scan to see more", s.cfg.Limits.MaxFilesScan))
			}
			return nil
		})
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag <candidate|never> <relpath>...",
	Short: "Mark files as candidates or to be left alone",
	Long: `Set the status of the listed files. Files already organized (done) are
skipped. Tagging clears approval.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			result, err := s.BulkSetStatus(&engine.BulkStatusRequest{
				RelPaths: args[1:],
				Status:   state.Status(strings.ToLower(args[0])),
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(result)
			}

			PrintSuccess(fmt.Sprintf("Tagged %s as %s", PrintCount(len(result.Updated), "file", "files"), strings.ToLower(args[0])))
			for _, relPath := range result.SkippedDone {
				PrintWarning(fmt.Sprintf("%s is done, skipped", relPath))
			}
			for _, relPath := range result.Missing {
				PrintWarning(fmt.Sprintf("%s is not in the item list", relPath))
			}
			return nil
		})
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List items with their status and proposal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			items, err := s.Review(&engine.ReviewRequest{Filter: reviewFilter, Query: reviewQuery})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(newItemViews(items))
			}

			if len(items) == 0 {
				PrintEmptyState("No matching items")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				dest := ""
				switch {
				case item.Status == state.StatusDone:
					dest = item.DoneDestination
				case item.Suggestion != nil:
					dest = item.EditedFolder + "/" + item.EditedName
				}
				approved := ""
				if item.Approved && item.Status == state.StatusCandidate {
					approved = "yes"
				}
				rows = append(rows, []string{
					item.RelPath,
					string(item.Status),
					humanSize(item.Size),
					item.ModifiedTime.Local().Format("2006-01-02 15:04"),
					approved,
					dest,
				})
			}
			PrintTable([]string{"PATH", "STATUS", "SIZE", "MODIFIED", "APPROVED", "DESTINATION"}, rows)
			return nil
		})
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <relpath>",
	Short: "Show the extracted content preview of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			item, err := s.Preview(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(newItemView(item, true))
			}

			p := item.Preview
			PrintSection(item.RelPath)
			PrintLabelValue("Kind", string(p.Kind))
			PrintLabelValue("Size", humanSize(p.Size))
			PrintLabelValue("Modified", clock.Truncate(p.ModifiedTime).Local().Format("2006-01-02 15:04:05"))
			if p.Width > 0 || p.Height > 0 {
				PrintLabelValue("Dimensions", fmt.Sprintf("%dx%d", p.Width, p.Height))
			}
			if p.Hash != "" {
				PrintLabelValue("SHA-256", p.Hash)
			}
			if p.Notes != "" {
				PrintLabelValueWithColor("Notes", p.Notes, warningColor)
			}
			if p.Text != "" {
				fmt.Fprintln(stdout)
				PrintInfo(p.Text)
			}
			return nil
		})
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanMerge, "merge", false, "Keep prior state for files still on disk")
	reviewCmd.Flags().StringVar(&reviewFilter, "filter", "all", "Status filter: all, candidate, never or done")
	reviewCmd.Flags().StringVarP(&reviewQuery, "query", "q", "", "Case-insensitive substring of the path")
}
