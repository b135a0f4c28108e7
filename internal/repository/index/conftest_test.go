package index

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/db"
)

// mockStore records calls to the store facade.
type mockStore struct {
	hashes map[string]map[string]string
	hsetErr error

	exists    bool
	existsErr error

	createdDef *db.IndexDefinition
	createErr  error

	knnResult *db.SearchResult
	knnErr    error
	lastKNN   *db.KNNQuery

	count    int
	countErr error
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string)}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	m.hashes[key] = fields
	return nil
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.lastKNN = q
	return m.knnResult, m.knnErr
}

func (m *mockStore) SearchCount(_ context.Context, _, _ string) (int, error) {
	return m.count, m.countErr
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.createdDef = def
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}
