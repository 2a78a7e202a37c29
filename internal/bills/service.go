package bills

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ledgerly-dev/ledgerly/internal/model"
)

// Service provides in-memory lookup over an account's recurring bills.
type Service struct {
	bills []model.RecurringBill
	byID  map[string]model.RecurringBill
}

// NewService creates a Service from a slice of bills.
func NewService(bs []model.RecurringBill) *Service {
	byID := make(map[string]model.RecurringBill, len(bs))
	for _, b := range bs {
		byID[b.ID] = b
	}
	return &Service{bills: bs, byID: byID}
}

// Load reads bills.csv for an account and returns a Service. A missing
// file yields an empty service.
func Load(repoRoot, accountID string) (*Service, error) {
	path := billsPath(repoRoot, accountID)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewService(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening bills file: %w", err)
	}
	defer f.Close()

	bs, err := ReadBills(f)
	if err != nil {
		return nil, fmt.Errorf("reading bills file: %w", err)
	}
	for i := range bs {
		bs[i].AccountID = accountID
	}
	return NewService(bs), nil
}

// All returns all bills.
func (s *Service) All() []model.RecurringBill {
	return s.bills
}

// Get returns a bill by ID.
func (s *Service) Get(id string) (model.RecurringBill, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// Active returns the active bills.
func (s *Service) Active() []model.RecurringBill {
	var out []model.RecurringBill
	for _, b := range s.bills {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

// Replace swaps one bill in place, keyed by ID.
func (s *Service) Replace(b model.RecurringBill) {
	for i := range s.bills {
		if s.bills[i].ID == b.ID {
			s.bills[i] = b
			break
		}
	}
	s.byID[b.ID] = b
}

// Save writes the account's bills back to bills.csv.
func (s *Service) Save(repoRoot, accountID string) error {
	path := billsPath(repoRoot, accountID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating account dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bills file: %w", err)
	}
	defer f.Close()

	if err := WriteBills(f, s.bills); err != nil {
		return fmt.Errorf("writing bills file: %w", err)
	}
	return nil
}

func billsPath(repoRoot, accountID string) string {
	return filepath.Join(repoRoot, "accounts", accountID, "bills.csv")
}
