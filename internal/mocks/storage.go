package mocks

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/church-content-api/internal/storage"
)

// MockStore is an in-memory implementation of storage.Store
type MockStore struct {
	mu           sync.RWMutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	Deleted      []string
	// Err, when set, is returned by every method
	Err error
}

// Verify interface compliance
var _ storage.Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

func (m *MockStore) Save(ctx context.Context, ref string, r io.Reader, size int64, contentType string) error {
	if m.Err != nil {
		return m.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[ref] = data
	m.ContentTypes[ref] = contentType
	return nil
}

func (m *MockStore) Open(ctx context.Context, ref string) (*storage.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.Objects[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{
		Reader:      io.NopCloser(bytes.NewReader(data)),
		ContentType: m.ContentTypes[ref],
		Size:        int64(len(data)),
	}, nil
}

func (m *MockStore) Delete(ctx context.Context, ref string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[ref]; !ok {
		return storage.ErrNotFound
	}
	delete(m.Objects, ref)
	delete(m.ContentTypes, ref)
	m.Deleted = append(m.Deleted, ref)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	refs := make([]string, 0, len(m.Objects))
	for ref := range m.Objects {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs, nil
}

// Has reports whether a reference is stored; safe to call while background
// workers mutate the store
func (m *MockStore) Has(ref string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.Objects[ref]
	return ok
}
