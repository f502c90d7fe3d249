package memory

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/domain/repository"
)

var errInstanceNotFound = errors.New("memory: instance not found")

// InstanceStore keeps GPU instance listings in process.
type InstanceStore struct {
	mu        sync.RWMutex
	instances map[string]*entity.Instance
}

func NewInstanceStore() *InstanceStore {
	return &InstanceStore{instances: make(map[string]*entity.Instance)}
}

func (s *InstanceStore) Create(i *entity.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.UpdatedAt = now
	cp := *i
	s.instances[cp.ID] = &cp
	return nil
}

func (s *InstanceStore) GetByID(id string) (*entity.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.instances[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (s *InstanceStore) List(f entity.InstanceFilter) ([]*entity.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Instance, 0, len(s.instances))
	for _, i := range s.instances {
		if !matches(i, f) {
			continue
		}
		cp := *i
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].PricePerHour != out[b].PricePerHour {
			return out[a].PricePerHour < out[b].PricePerHour
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (s *InstanceStore) Update(i *entity.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.instances[i.ID]
	if !ok {
		return errInstanceNotFound
	}
	i.UpdatedAt = time.Now().UTC()
	cp := *i
	cp.CreatedAt = old.CreatedAt
	s.instances[cp.ID] = &cp
	return nil
}

func (s *InstanceStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[id]; !ok {
		return errInstanceNotFound
	}
	delete(s.instances, id)
	return nil
}

func matches(i *entity.Instance, f entity.InstanceFilter) bool {
	if f.GPUModel != "" && i.GPUModel != f.GPUModel {
		return false
	}
	if f.Region != "" && i.Region != f.Region {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if f.MaxPrice > 0 && i.PricePerHour > f.MaxPrice {
		return false
	}
	if f.ProviderID != "" && i.ProviderID != f.ProviderID {
		return false
	}
	return true
}

var _ repository.InstanceRepository = (*InstanceStore)(nil)
