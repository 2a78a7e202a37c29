package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerly-dev/ledgerly/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerly",
		Short:   "Personal finance ledger with reconciliation and projections",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("repo", "r", ".", "repo root directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newBalancesCommand())
	rootCmd.AddCommand(newDismissCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

func repoRoot(cmd *cobra.Command) string {
	root, _ := cmd.Flags().GetString("repo")
	if root == "" {
		return "."
	}
	return root
}
