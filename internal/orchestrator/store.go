package orchestrator

import (
	"sort"
	"sync"

	"github.com/taglia21/App-Builder-sub001/internal/model"
)

// SummaryStore holds the live pipeline state per project.
type SummaryStore interface {
	Put(summary model.DeploymentSummary)
	Get(projectID string) (model.DeploymentSummary, bool)
	List() []model.DeploymentSummary
}

// MemoryStore is the default in-process summary store.
type MemoryStore struct {
	mu        sync.RWMutex
	summaries map[string]model.DeploymentSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{summaries: make(map[string]model.DeploymentSummary)}
}

func (s *MemoryStore) Put(summary model.DeploymentSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.ProjectID] = summary
}

func (s *MemoryStore) Get(projectID string) (model.DeploymentSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[projectID]
	return summary, ok
}

func (s *MemoryStore) List() []model.DeploymentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.DeploymentSummary, 0, len(s.summaries))
	for _, summary := range s.summaries {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out
}

// projectLocks serializes pipeline runs per project id. Different projects
// deploy concurrently; the same project never does.
type projectLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProjectLocks() *projectLocks {
	return &projectLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *projectLocks) lock(projectID string) *sync.Mutex {
	p.mu.Lock()
	l, ok := p.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[projectID] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l
}
