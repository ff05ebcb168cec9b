package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global flags
	jsonOutput bool
	verbose    bool

	// settings binds global flags and ORGANIZER_* environment variables.
	settings = viper.New()

	// stdout receives command output; set from the executing command so
	// tests can capture it.
	stdout io.Writer = os.Stdout

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// rootCmd is the root command for organizer.
var rootCmd = &cobra.Command{
	Use:     "organizer",
	Version: "dev",
	Short:   "Review-first organizer for a OneDrive download area",
	Long: `organizer sorts a cluttered download folder into a fixed folder taxonomy.

It scans the folder, asks a local language model for a name and destination
per file, lets you review and edit every proposal, and only then moves or
copies approved files. Existing files are never overwritten.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stdout = cmd.OutOrStdout()
		setupLogging(cmd.ErrOrStderr())
		return nil
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// setupLogging installs the default slog handler: warnings only, or
// everything with --verbose.
func setupLogging(w io.Writer) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// customHelpFunc returns a custom help function that colors group titles
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")

		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	// Ungrouped commands (Additional Commands section)
	hasUngrouped := false
	for _, c := range cmd.Commands() {
		if c.GroupID == "" && !c.Hidden {
			if !hasUngrouped {
				help.WriteString(sectionTitleColor.Sprint("Additional Commands:"))
				help.WriteString("\n")
				hasUngrouped = true
			}
			fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
		}
	}
	if hasUngrouped {
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

func init() {
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every step to stderr")
	flags.String("config", "", "Config file (default is <data-dir>/config.yaml)")
	flags.String("data-dir", "", "Organizer data directory (default is $ORGANIZER_ROOT or ~/.organizer)")
	flags.String("model", "", "Override the advisor model")
	flags.String("advisor-url", "", "Override the advisor base URL")

	_ = settings.BindPFlag("config", flags.Lookup("config"))
	_ = settings.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = settings.BindPFlag("advisor.model", flags.Lookup("model"))
	_ = settings.BindPFlag("advisor.base_url", flags.Lookup("advisor-url"))
	settings.SetEnvPrefix("ORGANIZER")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	settings.AutomaticEnv()

	rootCmd.AddGroup(&cobra.Group{
		ID:    "setup",
		Title: "Setup:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "triage",
		Title: "Scan & Triage:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "proposals",
		Title: "Proposals:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "apply",
		Title: "Apply & Audit:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cli-tooling",
		Title: "CLI & Tooling:",
	})

	// CLI & Tooling commands
	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the organizer CLI version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				target = cmd.Root()
			}
			_ = target.Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	completionCmd := &cobra.Command{
		Use:     "completion",
		Short:   "Generate the autocompletion script for the specified shell",
		GroupID: "cli-tooling",
		Long: `Generate the autocompletion script for organizer for the specified shell.
See each sub-command's help for details on how to use the generated script.`,
	}
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "bash",
		Short:                 "Generate the autocompletion script for bash",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "zsh",
		Short:                 "Generate the autocompletion script for zsh",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "fish",
		Short:                 "Generate the autocompletion script for fish",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:                   "powershell",
		Short:                 "Generate the autocompletion script for powershell",
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		},
	})
	rootCmd.AddCommand(completionCmd)

	// Setup commands
	setRootCmd.GroupID = "setup"
	modeCmd.GroupID = "setup"
	foldersCmd.GroupID = "setup"
	configCmd.GroupID = "setup"
	rootCmd.AddCommand(setRootCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(foldersCmd)
	rootCmd.AddCommand(configCmd)

	// Scan & Triage commands
	scanCmd.GroupID = "triage"
	tagCmd.GroupID = "triage"
	reviewCmd.GroupID = "triage"
	previewCmd.GroupID = "triage"
	statusCmd.GroupID = "triage"
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statusCmd)

	// Proposal commands
	suggestCmd.GroupID = "proposals"
	proposalsCmd.GroupID = "proposals"
	approveCmd.GroupID = "proposals"
	unapproveCmd.GroupID = "proposals"
	editCmd.GroupID = "proposals"
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(proposalsCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(unapproveCmd)
	rootCmd.AddCommand(editCmd)

	// Apply & Audit commands
	applyCmd.GroupID = "apply"
	logCmd.GroupID = "apply"
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(logCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
