package drinks

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store, used in tests and when no database is
// configured
type MemoryStore struct {
	lock   sync.RWMutex
	drinks map[int64]Drink
	nextID int64
}

// NewMemoryStore creates a new, empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drinks: map[int64]Drink{},
		nextID: 1,
	}
}

func (s *MemoryStore) List(_ context.Context) ([]Drink, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]Drink, 0, len(s.drinks))
	for _, d := range s.drinks {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (Drink, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	drink, ok := s.drinks[id]
	if !ok {
		return Drink{}, ErrNotFound
	}
	return drink, nil
}

func (s *MemoryStore) Create(_ context.Context, drink Drink) (Drink, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, d := range s.drinks {
		if d.Title == drink.Title {
			return Drink{}, ErrDuplicateTitle
		}
	}

	drink.ID = s.nextID
	s.nextID++
	s.drinks[drink.ID] = drink
	return drink, nil
}

func (s *MemoryStore) Update(_ context.Context, drink Drink) (Drink, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.drinks[drink.ID]; !ok {
		return Drink{}, ErrNotFound
	}
	for id, d := range s.drinks {
		if id != drink.ID && d.Title == drink.Title {
			return Drink{}, ErrDuplicateTitle
		}
	}

	s.drinks[drink.ID] = drink
	return drink, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.drinks[id]; !ok {
		return ErrNotFound
	}
	delete(s.drinks, id)
	return nil
}
