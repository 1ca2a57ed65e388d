package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MemUserRepository keeps users in process memory. Email uniqueness is checked and the
// row inserted under one lock, which plays the role of the Postgres unique index.
type MemUserRepository struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]UserRecord
	byEmail map[string]int64
}

func NewMemUserRepository() *MemUserRepository {
	return &MemUserRepository{
		byID:    make(map[int64]UserRecord),
		byEmail: make(map[string]int64),
	}
}

func (r *MemUserRepository) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, MapStoreError(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, notFoundError("user")
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemUserRepository) FindByID(ctx context.Context, id int64) (*UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, MapStoreError(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, notFoundError("user")
	}
	return &u, nil
}

func (r *MemUserRepository) Create(ctx context.Context, rec UserRecord) (*UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, MapStoreError(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[rec.Email]; taken {
		return nil, duplicateError("email")
	}
	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now().UTC()
	r.byID[rec.ID] = rec
	r.byEmail[rec.Email] = rec.ID
	return &rec, nil
}

func (r *MemUserRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return MapStoreError(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return notFoundError("user")
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	return nil
}

func (r *MemUserRepository) HasAdmin(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Role == RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemUserRepository) List(ctx context.Context, page, perPage int) ([]User, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	r.mu.Lock()
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	start := (page - 1) * perPage
	items := make([]User, 0, perPage)
	for i := start; i < len(ids) && i < start+perPage; i++ {
		items = append(items, r.byID[ids[i]].Public())
	}
	total := len(ids)
	r.mu.Unlock()
	return items, total, nil
}
