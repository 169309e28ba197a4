package card

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]Card
}

// NewMemoryRepository builds an in-memory card store for dev mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{cards: make(map[uuid.UUID]Card)}
}

func (r *memoryRepository) Create(_ context.Context, c Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[c.ID] = c
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var cards []Card
	for _, c := range r.cards {
		if c.OwnerID == ownerID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return cards, nil
}

func (r *memoryRepository) Update(_ context.Context, c Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cards[c.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Label = c.Label
	stored.FullName = c.FullName
	stored.CardNumber = c.CardNumber
	stored.UpdatedAt = time.Now().UTC()
	r.cards[c.ID] = stored
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[id]; !ok {
		return ErrNotFound
	}
	delete(r.cards, id)
	return nil
}

func (r *memoryRepository) SetImageKey(_ context.Context, id uuid.UUID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return ErrNotFound
	}
	c.ImageKey = key
	c.UpdatedAt = time.Now().UTC()
	r.cards[id] = c
	return nil
}
