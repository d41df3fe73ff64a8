package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
)

// UsersRepo is an in-memory mirror of the postgres repo, used by tests
// and local experiments. Same error contract as the real store.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
	}

	r.items[u.ID] = u

	return nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, patch user.ProfilePatch) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if patch.Email != nil {
		email := user.NormalizeEmail(*patch.Email)

		for otherID, other := range r.items {
			if otherID != id && strings.EqualFold(other.Email, email) {
				return user.User{}, user.ErrEmailTaken
			}
		}

		u.Email = email
	}

	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}

	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return nil
}

func (r *UsersRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	u.LastLogin = &at
	r.items[id] = u

	return nil
}

func (r *UsersRepo) SetStatus(ctx context.Context, id string, status user.Status) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
	r.mu.RLock()

	matched := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		if !matches(u, filter) {
			continue
		}

		matched = append(matched, u)
	}

	r.mu.RUnlock()

	// newest-created first, id as tiebreak for stable pages
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)

	start := filter.Offset()
	if start > total {
		start = total
	}

	end := start + filter.Limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func matches(u user.User, filter user.ListFilter) bool {
	if filter.Role != "" && u.Role != filter.Role {
		return false
	}

	if filter.Status != "" && u.Status != filter.Status {
		return false
	}

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)

		if !strings.Contains(strings.ToLower(u.FullName), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			return false
		}
	}

	return true
}
