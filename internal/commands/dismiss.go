package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerly-dev/ledgerly/internal/config"
	"github.com/ledgerly-dev/ledgerly/internal/ledger"
)

func newDismissCommand() *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "dismiss <projection-id>",
		Short: "Hide a projected occurrence from future projections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDismiss(repoRoot(cmd), accountID, args[0])
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runDismiss(root, accountID, projectionID string) error {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return err
	}
	if _, ok := cfg.Account(accountID); !ok {
		return fmt.Errorf("unknown account %q", accountID)
	}
	if !strings.HasPrefix(projectionID, "proj-") {
		return fmt.Errorf("%q is not a projection id", projectionID)
	}

	store := ledger.NewService(root)
	dismissed, err := store.Dismissed(accountID)
	if err != nil {
		return err
	}
	if dismissed[projectionID] {
		fmt.Printf("%s already dismissed\n", projectionID)
		return nil
	}

	if err := store.Dismiss(accountID, projectionID); err != nil {
		return err
	}
	fmt.Printf("Dismissed %s\n", projectionID)
	return nil
}
