package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// accountSet is the map-backed core shared by the in-memory and file
// repositories. Callers hold the lock.
type accountSet map[uuid.UUID]*Account

func (s accountSet) create(a Account, now time.Time) (*Account, error) {
	a.Email = NormalizeEmail(a.Email)
	for _, existing := range s {
		if existing.Email == a.Email {
			return nil, ErrEmailTaken
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now.UTC()
	}
	a.UpdatedAt = a.CreatedAt
	stored := a.clone()
	s[stored.ID] = stored
	return stored, nil
}

func (s accountSet) byEmail(email string) *Account {
	email = NormalizeEmail(email)
	for _, a := range s {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (s accountSet) byVerifyToken(token string, now time.Time) *Account {
	for _, a := range s {
		if tokenMatches(a.VerifyToken, token) && a.HasLiveVerifyToken(now) {
			return a
		}
	}
	return nil
}

func (s accountSet) byResetToken(token string, now time.Time) *Account {
	for _, a := range s {
		if tokenMatches(a.ResetToken, token) && a.HasLiveResetToken(now) {
			return a
		}
	}
	return nil
}

// InMemoryRepository implements Repository with a map. Intended for tests
// and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts accountSet
	now      func() time.Time
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts: make(accountSet),
		now:      time.Now,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, a Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.accounts.create(a, r.now())
	if err != nil {
		return Account{}, err
	}
	return *stored.clone(), nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *a.clone(), nil
}

func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.accounts.byEmail(email)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	return *a.clone(), nil
}

func (r *InMemoryRepository) FindByVerifyToken(ctx context.Context, token string, now time.Time) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.accounts.byVerifyToken(token, now)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	return *a.clone(), nil
}

func (r *InMemoryRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.accounts.byResetToken(token, now)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	return *a.clone(), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id uuid.UUID, u AccountUpdate) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	u.apply(a, r.now())
	return *a.clone(), nil
}

func (r *InMemoryRepository) ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.accounts.byVerifyToken(token, now)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	AccountUpdate{MarkVerified: true, ClearVerifyToken: true}.apply(a, now)
	return *a.clone(), nil
}

func (r *InMemoryRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.accounts.byResetToken(token, now)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	AccountUpdate{PasswordHash: &passwordHash, ClearResetToken: true}.apply(a, now)
	return *a.clone(), nil
}
