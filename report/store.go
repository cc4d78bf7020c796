package report

import (
	"fmt"
	"sort"
	"sync"
)

// Store holds generated reports for the review workflow. Persistence
// engineering is out of scope for this service; the interface keeps the
// door open for other backends.
type Store interface {
	// Put stores a report (or a new revision of one).
	Put(r *ComplianceReport) error

	// Get returns the latest revision of a report.
	Get(reportID string) (*ComplianceReport, error)

	// List returns the latest revision of every report, sorted by
	// report ID for stable output.
	List() []*ComplianceReport
}

// InMemoryStore implements Store with a map. Thread-safe.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*ComplianceReport
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reports: make(map[string]*ComplianceReport)}
}

func (s *InMemoryStore) Put(r *ComplianceReport) error {
	if r.ReportID == "" {
		return fmt.Errorf("report has no ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.reports[r.ReportID]; ok && r.Revision <= existing.Revision {
		return fmt.Errorf("report %s revision %d already stored", r.ReportID, r.Revision)
	}
	s.reports[r.ReportID] = r
	return nil
}

func (s *InMemoryStore) Get(reportID string) (*ComplianceReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[reportID]
	if !ok {
		return nil, fmt.Errorf("report %s not found", reportID)
	}
	return r, nil
}

func (s *InMemoryStore) List() []*ComplianceReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ComplianceReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportID < out[j].ReportID })
	return out
}
