package account

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	idmerrors "github.com/tendant/simple-account/pkg/errors"
)

const accountsFile = "accounts.json"

// FileRepository implements Repository on a JSON file in dataDir. Every
// mutation rewrites the file through a temp file and rename.
type FileRepository struct {
	dataDir  string
	accounts accountSet
	mutex    sync.RWMutex
	now      func() time.Time
}

// accountsData is the on-disk layout.
type accountsData struct {
	Accounts []*Account `json:"accounts"`
}

// NewFileRepository creates a file-based repository, loading existing data.
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir:  dataDir,
		accounts: make(accountSet),
		now:      time.Now,
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileRepository) Create(ctx context.Context, a Account) (Account, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored, err := r.accounts.create(a, r.now())
	if err != nil {
		return Account{}, err
	}
	if err := r.save(); err != nil {
		delete(r.accounts, stored.ID)
		return Account{}, idmerrors.StoreUnavailable(err)
	}
	return *stored.clone(), nil
}

func (r *FileRepository) FindByID(ctx context.Context, id uuid.UUID) (Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return *a.clone(), nil
}

func (r *FileRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	a := r.accounts.byEmail(email)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	return *a.clone(), nil
}

func (r *FileRepository) FindByVerifyToken(ctx context.Context, token string, now time.Time) (Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	a := r.accounts.byVerifyToken(token, now)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	return *a.clone(), nil
}

func (r *FileRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	a := r.accounts.byResetToken(token, now)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	return *a.clone(), nil
}

func (r *FileRepository) Update(ctx context.Context, id uuid.UUID, u AccountUpdate) (Account, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return r.mutate(a, u, r.now())
}

func (r *FileRepository) ConsumeVerifyToken(ctx context.Context, token string, now time.Time) (Account, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	a := r.accounts.byVerifyToken(token, now)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	return r.mutate(a, AccountUpdate{MarkVerified: true, ClearVerifyToken: true}, now)
}

func (r *FileRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (Account, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	a := r.accounts.byResetToken(token, now)
	if a == nil {
		return Account{}, ErrAccountNotFound
	}
	return r.mutate(a, AccountUpdate{PasswordHash: &passwordHash, ClearResetToken: true}, now)
}

// mutate applies u to a and persists, restoring the previous record if the
// write fails. Callers hold the write lock.
func (r *FileRepository) mutate(a *Account, u AccountUpdate, now time.Time) (Account, error) {
	previous := a.clone()
	u.apply(a, now)
	if err := r.save(); err != nil {
		r.accounts[a.ID] = previous
		return Account{}, idmerrors.StoreUnavailable(err)
	}
	return *a.clone(), nil
}

func (r *FileRepository) load() error {
	filePath := filepath.Join(r.dataDir, accountsFile)

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var stored accountsData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	for _, a := range stored.Accounts {
		r.accounts[a.ID] = a
	}
	return nil
}

// save writes all accounts to file atomically
func (r *FileRepository) save() error {
	accounts := make([]*Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		accounts = append(accounts, a)
	}

	jsonData, err := json.MarshalIndent(accountsData{Accounts: accounts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tempFile := filepath.Join(r.dataDir, accountsFile+".tmp")
	if err := os.WriteFile(tempFile, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, filepath.Join(r.dataDir, accountsFile)); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
