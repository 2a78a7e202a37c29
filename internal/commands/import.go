package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ledgerly-dev/ledgerly/internal/auditlog"
	"github.com/ledgerly-dev/ledgerly/internal/bills"
	"github.com/ledgerly-dev/ledgerly/internal/config"
	"github.com/ledgerly-dev/ledgerly/internal/importer"
	"github.com/ledgerly-dev/ledgerly/internal/ledger"
	"github.com/ledgerly-dev/ledgerly/internal/logging"
	"github.com/ledgerly-dev/ledgerly/internal/proposal"
	"github.com/ledgerly-dev/ledgerly/internal/reconcile"
)

func newImportCommand() *cobra.Command {
	var accountID string
	var format string
	var applyProposals bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Reconcile a bank export batch into the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(repoRoot(cmd), args[0], accountID, format, applyProposals)
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&format, "format", "normalized", "export format (normalized, chase)")
	cmd.Flags().BoolVar(&applyProposals, "apply-proposals", false, "apply bill update proposals without prompting")

	return cmd
}

func runImport(root, file, accountID, format string, applyProposals bool) error {
	log := logging.New()

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return err
	}
	if _, ok := cfg.Account(accountID); !ok {
		return fmt.Errorf("unknown account %q", accountID)
	}

	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown format %q", format)
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	incoming, parseErrs, err := parser.Parse(f)
	if err != nil {
		return err
	}
	// The account is stamped at import time, never by the parser.
	for i := range incoming {
		incoming[i].AccountID = accountID
	}

	store := ledger.NewService(root)
	snapshot, err := store.Load(accountID)
	if err != nil {
		return err
	}

	billSvc, err := bills.Load(root, accountID)
	if err != nil {
		return err
	}

	res := reconcile.Run(incoming, snapshot, billSvc.All())

	if err := store.Save(accountID, res.Ledger); err != nil {
		return err
	}

	rowErrs := append(parseErrs, res.Errors...)
	printImportSummary(res.Counts, rowErrs)

	updates := proposal.Build(billSvc.All(), res.Matches)
	if len(updates) > 0 {
		if err := handleProposals(billSvc, updates, applyProposals, root, accountID, log); err != nil {
			return err
		}
	}

	entry := auditlog.Entry{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		AccountID: accountID,
		File:      filepath.Base(file),
		New:       res.Counts.New,
		Updated:   res.Counts.Updated,
		Skipped:   res.Counts.Skipped,
		Posted:    res.Counts.Posted,
		RowErrors: len(rowErrs),
	}
	if err := auditlog.Append(root, []auditlog.Entry{entry}); err != nil {
		return err
	}

	return nil
}

func printImportSummary(counts reconcile.Counts, rowErrs []reconcile.RowError) {
	fmt.Printf("Imported: %d new, %d updated, %d skipped, %d posted\n",
		counts.New, counts.Updated, counts.Skipped, counts.Posted)
	if len(rowErrs) > 0 {
		fmt.Printf("%d row(s) could not be processed:\n", len(rowErrs))
		for _, re := range rowErrs {
			fmt.Printf("  %s\n", re.Error())
		}
	}
}

// handleProposals prints pending bill updates and, when confirmed via
// --apply-proposals, writes them back to bills.csv. Schedule errors on
// a proposal are logged and leave that bill's due date unchanged.
func handleProposals(billSvc *bills.Service, updates []proposal.BillUpdate, apply bool, root, accountID string, log zerolog.Logger) error {
	fmt.Printf("%d bill update proposal(s):\n", len(updates))
	for _, u := range updates {
		if u.ScheduleErr != nil {
			log.Warn().Err(u.ScheduleErr).Str("bill", u.BillID).Msg("cannot propose next due date")
		}
		due := "unchanged"
		if !u.NextDueDate.IsZero() {
			due = u.NextDueDate.Format("2006-01-02")
		}
		fmt.Printf("  %s (%s): amount %s, next due %s\n", u.Description, u.BillID, u.Amount.StringFixed(2), due)
	}

	if !apply {
		fmt.Println("Re-run with --apply-proposals to apply.")
		return nil
	}

	for _, u := range updates {
		b, ok := billSvc.Get(u.BillID)
		if !ok {
			continue
		}
		updated, err := proposal.Apply(b, u)
		if err != nil {
			return err
		}
		billSvc.Replace(updated)
	}
	if err := billSvc.Save(root, accountID); err != nil {
		return err
	}
	fmt.Println("Applied bill updates.")
	return nil
}
