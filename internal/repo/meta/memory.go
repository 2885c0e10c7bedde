package meta

import (
	"context"
	"fmt"
	"sync"

	"github.com/sir_venger/gridfiles/internal/models"
)

// MemoryStore хранит записи только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	files map[string]models.File
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: map[string]models.File{}}
}

// Get возвращает запись по id или ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fr, ok := s.files[id]
	if !ok {
		return models.File{}, models.ErrNotFound
	}
	return fr.Clone(), nil
}

// List возвращает копии всех записей в порядке сохранения.
func (s *MemoryStore) List(context.Context) ([]models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.File, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.files[id].Clone())
	}
	return out, nil
}

// Save добавляет новую запись.
func (s *MemoryStore) Save(_ context.Context, fr models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[fr.ID]; ok {
		return fmt.Errorf("file %s already exists", fr.ID)
	}
	s.files[fr.ID] = fr.Clone()
	s.order = append(s.order, fr.ID)
	return nil
}

// Delete удаляет запись, если она есть.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return nil
	}
	delete(s.files, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteAll очищает хранилище и возвращает удалённые id.
func (s *MemoryStore) DeleteAll(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.order
	s.order = nil
	s.files = map[string]models.File{}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}
