package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewMemoryRepository builds an in-memory user store for dev mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[uuid.UUID]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DeletedAt == nil && u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = NormalizeEmail(email)
	for _, u := range r.users {
		if u.DeletedAt == nil && u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryRepository) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	return r.update(id, func(u *User) error {
		u.Name = name
		return nil
	})
}

func (r *memoryRepository) UpdateEmail(_ context.Context, id uuid.UUID, email string) error {
	email = NormalizeEmail(email)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != id && u.DeletedAt == nil && u.Email == email {
			return ErrEmailTaken
		}
	}
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return ErrNotFound
	}
	u.Email = email
	u.EmailVerifiedAt = nil
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(id, func(u *User) error {
		u.PasswordHash = passwordHash
		return nil
	})
}

func (r *memoryRepository) MarkEmailVerified(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return false, ErrNotFound
	}
	if u.EmailVerifiedAt != nil {
		return false, nil
	}
	at = at.UTC()
	u.EmailVerifiedAt = &at
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return true, nil
}

func (r *memoryRepository) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, func(u *User) error {
		at := at.UTC()
		u.DeletedAt = &at
		return nil
	})
}

func (r *memoryRepository) update(id uuid.UUID, apply func(*User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return ErrNotFound
	}
	if err := apply(&u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}
