package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/engine"
)

var (
	applyDryRun bool

	logLimit int
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Move or copy every approved file to its destination",
	Long: `Move or copy every approved candidate into its destination folder under the
root, using the current mode. An occupied destination is never overwritten:
that file is refused and stays a candidate. Every attempt is recorded in the
audit log.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		return withEngine(func(s *session) error {
			result, err := s.Apply(ctx, &engine.ApplyRequest{DryRun: applyDryRun})
			if err != nil && result == nil {
				return err
			}
			if jsonOutput {
				if jerr := outputJSON(newApplyView(result)); jerr != nil {
					return jerr
				}
				return err
			}

			if applyDryRun {
				PrintSection("Dry Run")
				PrintInfo(fmt.Sprintf("Would %s %s", result.Plan.Mode, PrintCount(len(result.Plan.Operations), "file", "files")))
				if len(result.Plan.Operations) > 0 {
					ops := make([]string, 0, len(result.Plan.Operations))
					for _, op := range result.Plan.Operations {
						line := fmt.Sprintf("%s -> %s", op.RelPath, op.DestRel)
						if c := result.Plan.ConflictFor(op.RelPath); c != nil {
							line += " (" + c.Reason + ")"
						}
						ops = append(ops, line)
					}
					PrintList(ops, 1)
				}
				return nil
			}

			if len(result.Outcomes) == 0 {
				PrintEmptyState("Nothing approved to apply")
				return err
			}
			for _, o := range result.Outcomes {
				switch {
				case o.OK:
					PrintSuccess(fmt.Sprintf("%s -> %s", o.RelPath, o.DestRel))
				case o.Refused:
					PrintWarning(fmt.Sprintf("%s: %v", o.RelPath, o.Err))
				default:
					PrintError(fmt.Sprintf("%s: %v", o.RelPath, o.Err))
				}
			}
			fmt.Fprintln(stdout)
			PrintInfo(fmt.Sprintf("Applied %d of %d (batch %s)", result.Succeeded(), len(result.Outcomes), result.Batch))
			return err
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the most recent audit log entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(s *session) error {
			entries, err := s.AuditTail(logLimit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(entries)
			}

			if len(entries) == 0 {
				PrintEmptyState("No audit entries")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				result := "ok"
				switch {
				case e.Refused:
					result = "refused"
				case !e.OK:
					result = "failed: " + e.Error
				}
				rows = append(rows, []string{
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Mode,
					e.Rel,
					e.Dest,
					result,
				})
			}
			PrintTable([]string{"TIME", "MODE", "PATH", "DESTINATION", "RESULT"}, rows)
			return nil
		})
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show what would be applied without applying")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
}
