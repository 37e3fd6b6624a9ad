// Package settings holds the tax/tip/table configuration read by the
// billing projections and mutated only by admin actions.
package settings

import (
	"errors"
	"sync"

	"burguerclub-pos/internal/domain"
	"burguerclub-pos/internal/storage"
	"burguerclub-pos/pkg/pubsub"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recordKey = "app-settings"

var (
	ErrInvalidTaxPercentage  = errors.New("settings: tax percentage must be between 0 and 100")
	ErrInvalidTipPercentage  = errors.New("settings: tip percentages must be positive")
	ErrInvalidNumberOfTables = errors.New("settings: number of tables must be positive")
)

// Defaults returns the configuration used when no app-settings record
// exists yet.
func Defaults() domain.Settings {
	return domain.Settings{
		TipsEnabled:    true,
		TipPercentages: []int{10, 15, 20},
		TaxEnabled:     true,
		TaxPercentage:  16,
		BankAccounts: []domain.BankAccount{
			{
				ID:            "1",
				BankName:      "Banco Nacional",
				AccountNumber: "1234-5678-9012-3456",
				AccountHolder: "Food Truck SA de CV",
				AccountType:   "Cuenta Corriente",
			},
		},
		NumberOfTables: 10,
	}
}

// Update carries a partial settings change; nil fields stay untouched.
type Update struct {
	TipsEnabled    *bool
	TipPercentages []int
	TaxEnabled     *bool
	TaxPercentage  *int
	BankAccounts   []domain.BankAccount
	NumberOfTables *int
}

type Store struct {
	records *storage.RecordStore
	log     *zap.Logger

	mu       sync.Mutex
	settings domain.Settings
}

func NewStore(records *storage.RecordStore, bus *pubsub.Bus, log *zap.Logger) *Store {
	s := &Store{records: records, log: log}
	s.reload()

	if bus != nil {
		bus.Subscribe("storage."+recordKey, func(pubsub.Event) { s.reload() })
		bus.Subscribe("poll.tick", func(pubsub.Event) { s.reload() })
	}
	return s
}

// Settings returns a copy of the current configuration.
func (s *Store) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSettings(s.settings)
}

// Apply merges upd into the stored settings and persists the result.
func (s *Store) Apply(upd Update) error {
	if upd.TaxPercentage != nil && (*upd.TaxPercentage < 0 || *upd.TaxPercentage > 100) {
		return ErrInvalidTaxPercentage
	}
	if upd.NumberOfTables != nil && *upd.NumberOfTables <= 0 {
		return ErrInvalidNumberOfTables
	}
	for _, pct := range upd.TipPercentages {
		if pct <= 0 {
			return ErrInvalidTipPercentage
		}
	}

	s.mu.Lock()
	if upd.TipsEnabled != nil {
		s.settings.TipsEnabled = *upd.TipsEnabled
	}
	if upd.TipPercentages != nil {
		s.settings.TipPercentages = append([]int(nil), upd.TipPercentages...)
	}
	if upd.TaxEnabled != nil {
		s.settings.TaxEnabled = *upd.TaxEnabled
	}
	if upd.TaxPercentage != nil {
		s.settings.TaxPercentage = *upd.TaxPercentage
	}
	if upd.BankAccounts != nil {
		s.settings.BankAccounts = append([]domain.BankAccount(nil), upd.BankAccounts...)
	}
	if upd.NumberOfTables != nil {
		s.settings.NumberOfTables = *upd.NumberOfTables
	}
	snapshot := cloneSettings(s.settings)
	s.mu.Unlock()

	return s.records.Put(recordKey, snapshot)
}

// AddBankAccount appends a transfer destination and returns its
// generated ID.
func (s *Store) AddBankAccount(account domain.BankAccount) (string, error) {
	account.ID = uuid.NewString()

	s.mu.Lock()
	s.settings.BankAccounts = append(s.settings.BankAccounts, account)
	snapshot := cloneSettings(s.settings)
	s.mu.Unlock()

	return account.ID, s.records.Put(recordKey, snapshot)
}

// RemoveBankAccount deletes the account with the given ID; unknown IDs
// are a no-op.
func (s *Store) RemoveBankAccount(id string) error {
	s.mu.Lock()
	kept := s.settings.BankAccounts[:0]
	for _, account := range s.settings.BankAccounts {
		if account.ID != id {
			kept = append(kept, account)
		}
	}
	s.settings.BankAccounts = kept
	snapshot := cloneSettings(s.settings)
	s.mu.Unlock()

	return s.records.Put(recordKey, snapshot)
}

func (s *Store) reload() {
	var stored domain.Settings
	err := s.records.Get(recordKey, &stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("settings reload failed", zap.Error(err))
		}
		s.settings = Defaults()
		return
	}
	s.settings = stored
}

func cloneSettings(in domain.Settings) domain.Settings {
	out := in
	out.TipPercentages = append([]int(nil), in.TipPercentages...)
	out.BankAccounts = append([]domain.BankAccount(nil), in.BankAccounts...)
	return out
}
