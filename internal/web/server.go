// Package web exposes a read-only JSON API over the ledger, bills,
// and projections.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ledgerly-dev/ledgerly/internal/balance"
	"github.com/ledgerly-dev/ledgerly/internal/bills"
	"github.com/ledgerly-dev/ledgerly/internal/config"
	"github.com/ledgerly-dev/ledgerly/internal/ledger"
	"github.com/ledgerly-dev/ledgerly/internal/model"
	"github.com/ledgerly-dev/ledgerly/internal/project"
)

// Server serves account data from a repo root.
type Server struct {
	repoRoot string
	cfg      *config.Config
	store    *ledger.Service
	log      zerolog.Logger
}

// NewServer creates a Server over a repo root.
func NewServer(repoRoot string, cfg *config.Config, log zerolog.Logger) *Server {
	return &Server{
		repoRoot: repoRoot,
		cfg:      cfg,
		store:    ledger.NewService(repoRoot),
		log:      log,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/accounts/{account}/transactions", s.handleTransactions).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{account}/projections", s.handleProjections).Methods(http.MethodGet)
	return r
}

type apiTransaction struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	Pending         bool            `json:"pending"`
	Reconciled      bool            `json:"reconciled"`
	Manual          bool            `json:"manual"`
	RecurringBillID string          `json:"recurringBillId,omitempty"`
	Projected       bool            `json:"projected"`
}

// handleTransactions returns the account's ledger with running
// balances. With ?project=true, filtered projections are merged in
// before balances are computed.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["account"]
	acct, ok := s.cfg.Account(accountID)
	if !ok {
		http.Error(w, "unknown account", http.StatusNotFound)
		return
	}

	txns, err := s.store.Load(accountID)
	if err != nil {
		s.log.Error().Err(err).Str("account", accountID).Msg("loading ledger")
		http.Error(w, "loading ledger", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("project") == "true" {
		projections, err := s.projections(accountID, txns, s.horizon(r))
		if err != nil {
			http.Error(w, "generating projections", http.StatusInternalServerError)
			return
		}
		txns = append(txns, projections...)
	}

	starting, err := acct.Balance()
	if err != nil {
		http.Error(w, "bad starting balance", http.StatusInternalServerError)
		return
	}

	txns = balance.Calculate(balance.SortByDate(txns), starting)
	s.writeJSON(w, toAPI(txns))
}

// handleProjections returns the filtered projections alone, unsorted
// balances omitted.
func (s *Server) handleProjections(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["account"]
	if _, ok := s.cfg.Account(accountID); !ok {
		http.Error(w, "unknown account", http.StatusNotFound)
		return
	}

	txns, err := s.store.Load(accountID)
	if err != nil {
		http.Error(w, "loading ledger", http.StatusInternalServerError)
		return
	}

	projections, err := s.projections(accountID, txns, s.horizon(r))
	if err != nil {
		http.Error(w, "generating projections", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, toAPI(balance.SortByDate(projections)))
}

func (s *Server) projections(accountID string, txns []model.Transaction, horizonDays int) ([]model.Transaction, error) {
	billSvc, err := bills.Load(s.repoRoot, accountID)
	if err != nil {
		return nil, err
	}
	dismissed, err := s.store.Dismissed(accountID)
	if err != nil {
		return nil, err
	}

	generated, schedErrs := project.Generate(billSvc.Active(), time.Now(), horizonDays)
	for _, serr := range schedErrs {
		s.log.Warn().Err(serr).Str("account", accountID).Msg("skipping bill projection")
	}
	return project.Filter(generated, txns, dismissed), nil
}

func (s *Server) horizon(r *http.Request) int {
	if v := r.URL.Query().Get("horizon"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return s.cfg.Projection.HorizonDays
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encoding response")
	}
}

func toAPI(txns []model.Transaction) []apiTransaction {
	out := make([]apiTransaction, len(txns))
	for i, t := range txns {
		out[i] = apiTransaction{
			ID:              t.ID,
			Date:            t.Date.Format("2006-01-02"),
			Description:     t.Description,
			Category:        t.Category,
			Amount:          t.Amount,
			Balance:         t.Balance,
			Pending:         t.Pending,
			Reconciled:      t.Reconciled,
			Manual:          t.Manual,
			RecurringBillID: t.RecurringBillID,
			Projected:       t.Projected(),
		}
	}
	return out
}
