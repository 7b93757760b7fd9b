package vectorindex

import (
	"context"
	"sync"

	"github.com/kailas-cloud/mailbot/internal/db"
)

// mockStore is a hand-rolled store double with per-call error injection.
type mockStore struct {
	mu sync.Mutex

	records map[string]map[string]string

	pingErr   error
	hsetErrs  []error // consumed per call; nil entry = success
	createErr error
	dropErr   error

	exists     bool
	existsSeq  []bool // consumed before falling back to exists
	existsErr  error
	knnResult  *db.SearchResult
	knnErr     error
	lastKNN    *db.KNNQuery
	createArgs *db.IndexDefinition

	hsetCalls   int
	createCalls int
	dropCalls   int
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[string]map[string]string), exists: true}
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hsetCalls++
	if len(m.hsetErrs) > 0 {
		err := m.hsetErrs[0]
		m.hsetErrs = m.hsetErrs[1:]
		if err != nil {
			return err
		}
	}

	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	m.records[key] = copied
	return nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.createArgs = def
	return m.createErr
}

func (m *mockStore) DropIndex(context.Context, string, bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropCalls++
	return m.dropErr
}

func (m *mockStore) IndexExists(context.Context, string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if len(m.existsSeq) > 0 {
		v := m.existsSeq[0]
		m.existsSeq = m.existsSeq[1:]
		return v, nil
	}
	return m.exists, nil
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastKNN = q
	if m.knnErr != nil {
		return nil, m.knnErr
	}
	if m.knnResult == nil {
		return &db.SearchResult{}, nil
	}
	return m.knnResult, nil
}
