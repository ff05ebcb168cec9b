package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/advisor"
	"github.com/hkcmoris/onedrive-ai-organizer/internal/engine"
)

var (
	suggestLimit int

	approveAll     bool
	approveMinConf float64

	editFolder string
	editName   string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Ask the advisor for names and folders",
	Long: `Ask the advisor about candidates that have no proposal yet, one file at a
time. Confident proposals are approved automatically; everything else waits
for review. Files the advisor could not be reached for are retried by the
next run. Interrupting stops after the file in progress.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return withEngine(func(s *session) error {
			result, err := s.RunSuggestions(ctx, &engine.SuggestRequest{Limit: suggestLimit})
			if err != nil && result == nil {
				return err
			}
			if jsonOutput {
				if jerr := outputJSON(newSuggestView(result)); jerr != nil {
					return jerr
				}
				return err
			}

			for _, o := range result.Outcomes {
				if o.Err != nil {
					PrintError(fmt.Sprintf("%s: %v", o.RelPath, o.Err))
					continue
				}
				mark := " "
				if o.Approved {
					mark = "✓"
				}
				_, _ = confidenceColor(o.Suggestion.Confidence, s.cfg.Threshold()).Fprintf(stdout,
					"%s %.2f  %s -> %s/%s\n", mark, o.Suggestion.Confidence, o.RelPath,
					o.Suggestion.SuggestedFolder, o.Suggestion.SuggestedName)
			}
			fmt.Fprintln(stdout)
			PrintSuccess(fmt.Sprintf("Suggested %s, %d failed, %d remaining",
				PrintCount(len(result.Outcomes)-result.Failed(), "file", "files"), result.Failed(), result.Remaining))

			if n := result.Failed(); n > 0 && n == len(result.Outcomes) {
				PrintWarning(fmt.Sprintf("The advisor at %s did not answer; is it running?", s.cfg.Advisor.BaseURL))
				return advisor.ErrProviderUnavailable
			}
			if errors.Is(err, context.Canceled) {
				PrintWarning("Interrupted")
				return nil
			}
			return err
		})
	},
}

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List pending proposals, most confident first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			items, err := s.Proposals()
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(newItemViews(items))
			}

			if len(items) == 0 {
				PrintEmptyState("No pending proposals, run 'organizer suggest'")
				return nil
			}
			for _, item := range items {
				sug := item.Suggestion
				mark := "[ ]"
				if item.Approved {
					mark = "[x]"
				}
				_, _ = confidenceColor(sug.Confidence, s.cfg.Threshold()).Fprintf(stdout,
					"%s %.2f  %s\n", mark, sug.Confidence, item.RelPath)
				PrintLabelValue("    to", item.EditedFolder+"/"+item.EditedName)
				if sug.Reason != "" {
					PrintLabelValue("    why", sug.Reason)
				}
			}
			return nil
		})
	},
}

// setApproval approves or unapproves the given relpaths, or every pending
// proposal meeting the confidence floor with --all.
func setApproval(approved bool, relPaths []string) error {
	return withEngine(func(s *session) error {
		if approveAll {
			items, err := s.Proposals()
			if err != nil {
				return err
			}
			for _, item := range items {
				if item.Suggestion.Confidence >= approveMinConf {
					relPaths = append(relPaths, item.RelPath)
				}
			}
		}
		if len(relPaths) == 0 {
			return fmt.Errorf("no files given (pass relpaths or --all)")
		}

		req := &engine.UpdateProposalsRequest{Approved: make(map[string]bool, len(relPaths))}
		for _, relPath := range relPaths {
			req.Approved[relPath] = approved
		}
		result, err := s.UpdateProposals(req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(result)
		}

		verb := "Approved"
		if !approved {
			verb = "Unapproved"
		}
		PrintSuccess(fmt.Sprintf("%s %s", verb, PrintCount(len(result.Updated), "file", "files")))
		for _, relPath := range result.Ignored {
			PrintWarning(fmt.Sprintf("%s has no pending proposal", relPath))
		}
		return nil
	})
}

var approveCmd = &cobra.Command{
	Use:   "approve [relpath]...",
	Short: "Approve proposals for apply",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setApproval(true, args)
	},
}

var unapproveCmd = &cobra.Command{
	Use:   "unapprove [relpath]...",
	Short: "Withdraw approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setApproval(false, args)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <relpath>",
	Short: "Change the destination folder or name of a proposal",
	Long: `Change the destination folder or name of a proposal. Folders outside the
taxonomy fall back to the fallback folder; names are sanitized and keep the
file's extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("folder") && !cmd.Flags().Changed("name") {
			return fmt.Errorf("nothing to change (pass --folder and/or --name)")
		}

		return withEngine(func(s *session) error {
			relPath := args[0]
			req := &engine.UpdateProposalsRequest{}
			if cmd.Flags().Changed("folder") {
				req.Folder = map[string]string{relPath: editFolder}
			}
			if cmd.Flags().Changed("name") {
				req.Name = map[string]string{relPath: editName}
			}

			result, err := s.UpdateProposals(req)
			if err != nil {
				return err
			}
			if len(result.Ignored) > 0 {
				return fmt.Errorf("%w: %s has no pending proposal", engine.ErrNotFound, relPath)
			}

			item, err := s.Item(relPath)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(newItemView(item, false))
			}
			PrintSuccess(fmt.Sprintf("%s -> %s/%s", relPath, item.EditedFolder, item.EditedName))
			return nil
		})
	},
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "Maximum number of files to ask about (default from config, at most suggest_limit_max)")

	for _, c := range []*cobra.Command{approveCmd, unapproveCmd} {
		c.Flags().BoolVar(&approveAll, "all", false, "Apply to every pending proposal")
		c.Flags().Float64Var(&approveMinConf, "min-confidence", 0, "With --all, only proposals at or above this confidence")
	}

	editCmd.Flags().StringVar(&editFolder, "folder", "", "Destination folder from the taxonomy")
	editCmd.Flags().StringVar(&editName, "name", "", "New file name")
}
