package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps carts in process memory. It backs the storefront when no
// database is configured and every cart test.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[Key]*Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[Key]*Cart)}
}

func (s *MemoryStore) Initialize(_ context.Context, key Key) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.carts[key]; ok {
		return existing.clone(), nil
	}
	created := &Cart{
		DeviceID:     key.DeviceID,
		MerchantCode: key.MerchantCode,
		Mode:         key.Mode,
		Items:        []Item{},
		UpdatedAt:    time.Now().UTC(),
	}
	s.carts[key] = created
	return created.clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, key Key) (*Cart, error) {
	s.mu.Lock()
	existing, ok := s.carts[key]
	if ok {
		defer s.mu.Unlock()
		return existing.clone(), nil
	}
	s.mu.Unlock()
	return s.Initialize(ctx, key)
}

func (s *MemoryStore) AddItem(ctx context.Context, key Key, item Item) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.ensureLocked(key)
	item.ID = newLineID()
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	current.Items = append(current.Items, item)
	current.UpdatedAt = time.Now().UTC()
	return current.clone(), nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, key Key, itemID string, patch ItemPatch) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.ensureLocked(key)
	for i := range current.Items {
		if current.Items[i].ID != itemID {
			continue
		}
		applyPatch(&current.Items[i], patch)
		if current.Items[i].Quantity <= 0 {
			current.Items = append(current.Items[:i], current.Items[i+1:]...)
		}
		current.UpdatedAt = time.Now().UTC()
		break
	}
	return current.clone(), nil
}

func (s *MemoryStore) RemoveItem(_ context.Context, key Key, itemID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.ensureLocked(key)
	for i := range current.Items {
		if current.Items[i].ID == itemID {
			current.Items = append(current.Items[:i], current.Items[i+1:]...)
			current.UpdatedAt = time.Now().UTC()
			break
		}
	}
	return current.clone(), nil
}

func (s *MemoryStore) SetTableNumber(_ context.Context, key Key, tableNumber string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.ensureLocked(key)
	current.TableNumber = tableNumber
	current.UpdatedAt = time.Now().UTC()
	return current.clone(), nil
}

func (s *MemoryStore) Clear(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}

func (s *MemoryStore) ensureLocked(key Key) *Cart {
	if existing, ok := s.carts[key]; ok {
		return existing
	}
	created := &Cart{
		DeviceID:     key.DeviceID,
		MerchantCode: key.MerchantCode,
		Mode:         key.Mode,
		Items:        []Item{},
		UpdatedAt:    time.Now().UTC(),
	}
	s.carts[key] = created
	return created
}
