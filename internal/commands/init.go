package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerly-dev/ledgerly/internal/config"
)

func newInitCommand() *cobra.Command {
	var accountID string
	var accountName string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Ledgerly repo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, accountID, accountName)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "initial account id (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&accountName, "name", "", "initial account display name")

	return cmd
}

func runInit(dir, accountID, accountName string) error {
	if accountName == "" {
		accountName = accountID
	}

	dirs := []string{
		filepath.Join("accounts", accountID),
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(accountID, accountName)
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Printf("Initialized Ledgerly repo at %s (account %s)\n", dir, accountID)
	return nil
}
