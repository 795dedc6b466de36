// Package store provides report stores and builds the one selected by configuration.
package store

import (
	"context"
	"sync"

	"github.com/sharedcode/premortem"
)

// Memory is a process local report store.
type Memory struct {
	mu      sync.RWMutex
	reports map[string][]byte
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{reports: map[string][]byte{}}
}

// Put stores a marshaled copy of r so later changes by the caller are not observed.
func (m *Memory) Put(_ context.Context, r premortem.Report) error {
	ba, err := premortem.DefaultMarshaler.Marshal(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = ba
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (premortem.Report, bool, error) {
	m.mu.RLock()
	ba, ok := m.reports[id]
	m.mu.RUnlock()
	if !ok {
		return premortem.Report{}, false, nil
	}
	var r premortem.Report
	if err := premortem.DefaultMarshaler.Unmarshal(ba, &r); err != nil {
		return premortem.Report{}, false, err
	}
	return r, true, nil
}

// List returns summaries, newest first.
func (m *Memory) List(ctx context.Context) ([]premortem.ReportSummary, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.reports))
	for id := range m.reports {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	r := make([]premortem.ReportSummary, 0, len(ids))
	for _, id := range ids {
		rep, ok, err := m.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			r = append(r, rep.Summary())
		}
	}
	premortem.SortNewestFirst(r)
	return r, nil
}
