package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"meeting-minutes-go/internal/types"
)

// Memory is an in-process Store. It backs tests and single-node deployments
// that do not need durability across restarts.
type Memory struct {
	mu       sync.RWMutex
	byID     map[string]*types.Meeting
	bySource map[string]string // source file ID -> meeting ID
}

func NewMemory() *Memory {
	return &Memory{
		byID:     make(map[string]*types.Meeting),
		bySource: make(map[string]string),
	}
}

func (s *Memory) Create(ctx context.Context, m *types.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySource[m.SourceFileID]; exists {
		return ErrAlreadyExists
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	cp := *m
	s.byID[m.ID] = &cp
	s.bySource[m.SourceFileID] = m.ID
	return nil
}

func (s *Memory) Get(ctx context.Context, id string) (*types.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Memory) GetBySourceFileID(ctx context.Context, sourceFileID string) (*types.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySource[sourceFileID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *Memory) Update(ctx context.Context, m *types.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[m.ID]; !ok {
		return ErrNotFound
	}
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	s.byID[m.ID] = &cp
	return nil
}

func (s *Memory) List(ctx context.Context) ([]*types.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Meeting, 0, len(s.byID))
	for _, m := range s.byID {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.bySource, m.SourceFileID)
	delete(s.byID, id)
	return nil
}
