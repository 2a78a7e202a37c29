package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerly-dev/ledgerly/internal/balance"
	"github.com/ledgerly-dev/ledgerly/internal/bills"
	"github.com/ledgerly-dev/ledgerly/internal/config"
	"github.com/ledgerly-dev/ledgerly/internal/ledger"
	"github.com/ledgerly-dev/ledgerly/internal/logging"
	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/project"
)

func newBalancesCommand() *cobra.Command {
	var accountID string
	var withProjections bool
	var horizonDays int

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the account ledger with running balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalances(repoRoot(cmd), accountID, withProjections, horizonDays)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().BoolVar(&withProjections, "project", false, "include projected bill occurrences")
	cmd.Flags().IntVar(&horizonDays, "horizon", 0, "projection horizon in days (default from config)")

	return cmd
}

func runBalances(root, accountID string, withProjections bool, horizonDays int) error {
	log := logging.New()

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return err
	}
	acct, ok := cfg.Account(accountID)
	if !ok {
		return fmt.Errorf("unknown account %q", accountID)
	}

	store := ledger.NewService(root)
	txns, err := store.Load(accountID)
	if err != nil {
		return err
	}

	if withProjections {
		if horizonDays <= 0 {
			horizonDays = cfg.Projection.HorizonDays
		}

		billSvc, err := bills.Load(root, accountID)
		if err != nil {
			return err
		}
		dismissed, err := store.Dismissed(accountID)
		if err != nil {
			return err
		}

		generated, schedErrs := project.Generate(billSvc.Active(), time.Now(), horizonDays)
		for _, serr := range schedErrs {
			log.Warn().Err(serr).Msg("skipping bill projection")
		}
		txns = append(txns, project.Filter(generated, txns, dismissed)...)
	}

	starting, err := acct.Balance()
	if err != nil {
		return err
	}

	txns = balance.Calculate(balance.SortByDate(txns), starting)
	printBalances(acct.Name, txns)
	return nil
}

func printBalances(accountName string, txns []model.Transaction) {
	fmt.Printf("%s (%d transactions)\n", accountName, len(txns))
	for _, t := range txns {
		marker := " "
		switch {
		case t.Projected():
			marker = "~"
		case t.Pending:
			marker = "?"
		case t.Reconciled:
			marker = "*"
		}
		fmt.Printf("%s %s  %-40s %12s %12s\n",
			marker,
			t.Date.Format("2006-01-02"),
			t.Description,
			t.Amount.StringFixed(2),
			t.Balance.StringFixed(2))
	}
}
