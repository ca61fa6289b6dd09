package memory

import (
	"context"
	"sort"
	"sync"

	domainuser "staybook/internal/domain/user"
)

// UserRepository keeps accounts in memory with a unique email index.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[domainuser.ID]*domainuser.User
	byEmail map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[domainuser.ID]*domainuser.User),
		byEmail: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domainuser.NormalizeEmail(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return r.lookup(id)
}

// Save upserts by ID. Changing a user's email releases the old address.
func (r *UserRepository) Save(ctx context.Context, user *domainuser.User) error {
	if user == nil || user.ID == "" {
		return domainuser.ErrIDRequired
	}
	email := domainuser.NormalizeEmail(user.Email)
	if email == "" {
		return domainuser.ErrEmailRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byEmail[email]; ok && owner != user.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if prev, ok := r.byID[user.ID]; ok && prev.Email != email {
		delete(r.byEmail, prev.Email)
	}
	stored := user.Clone()
	stored.Email = email
	r.byEmail[email] = user.ID
	r.byID[user.ID] = stored
	return nil
}

// List returns users matching params ordered by creation time, plus the total match count.
func (r *UserRepository) List(ctx context.Context, params domainuser.ListParams) ([]*domainuser.User, int, error) {
	opts := params.Normalized()
	r.mu.RLock()
	matches := make([]*domainuser.User, 0, len(r.byID))
	for _, user := range r.byID {
		if opts.Matches(user) {
			matches = append(matches, user.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return page(matches, opts.Offset, opts.Limit), len(matches), nil
}

func (r *UserRepository) lookup(id domainuser.ID) (*domainuser.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return user.Clone(), nil
}

var _ domainuser.Repository = (*UserRepository)(nil)
