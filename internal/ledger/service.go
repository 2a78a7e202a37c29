package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledgerly-dev/ledgerly/internal/model"
)

// Service reads and writes whole per-account transaction snapshots.
// The engine packages stay pure; all file I/O lives here.
type Service struct {
	repoRoot string
}

// NewService creates a ledger Service rooted at a repo directory.
func NewService(repoRoot string) *Service {
	return &Service{repoRoot: repoRoot}
}

// Load reads the full transaction snapshot for an account. A missing
// file is an empty ledger, not an error.
func (s *Service) Load(accountID string) ([]model.Transaction, error) {
	path := s.transactionsPath(accountID)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	for i := range txns {
		txns[i].AccountID = accountID
	}
	return txns, nil
}

// Save replaces the account's transaction file with the given snapshot.
func (s *Service) Save(accountID string, txns []model.Transaction) error {
	path := s.transactionsPath(accountID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating account dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating ledger file: %w", err)
	}
	defer f.Close()

	if err := WriteTransactions(f, txns); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

// Dismissed returns the set of dismissed projection identities for an
// account.
func (s *Service) Dismissed(accountID string) (map[string]bool, error) {
	path := s.dismissedPath(accountID)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening dismissed list: %w", err)
	}
	defer f.Close()

	set := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id != "" {
			set[id] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading dismissed list: %w", err)
	}
	return set, nil
}

// Dismiss records a projection identity so future generations skip it.
func (s *Service) Dismiss(accountID, projectionID string) error {
	path := s.dismissedPath(accountID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating account dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening dismissed list: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, projectionID); err != nil {
		return fmt.Errorf("appending dismissed id: %w", err)
	}
	return nil
}

func (s *Service) transactionsPath(accountID string) string {
	return filepath.Join(s.repoRoot, "accounts", accountID, "transactions.csv")
}

func (s *Service) dismissedPath(accountID string) string {
	return filepath.Join(s.repoRoot, "accounts", accountID, "dismissed.csv")
}
