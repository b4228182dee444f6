package authstub

import (
	"context"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository builds an in-memory account store.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, account Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, account.Email) || existing.Username == account.Username {
			return ErrExists
		}
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *memoryRepository) FindByIdentifier(_ context.Context, identifier string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, account := range r.accounts {
		if strings.EqualFold(account.Email, identifier) || account.Username == identifier {
			return account, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}
