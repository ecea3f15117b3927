package docs

import (
	"fmt"
	"sync"
)

// Manager tracks the set of open documents.
type Manager struct {
	mu   sync.RWMutex
	open map[string]*Document
}

func NewManager() *Manager {
	return &Manager{open: make(map[string]*Document)}
}

func (m *Manager) Open(uri, content string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if doc, exists := m.open[uri]; exists {
		return doc, fmt.Errorf("document already open: %s", uri)
	}

	doc := NewDocument(uri, content)
	m.open[uri] = doc
	return doc, nil
}

func (m *Manager) Get(uri string) (*Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, exists := m.open[uri]
	return doc, exists
}

func (m *Manager) Close(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.open[uri]; !exists {
		return fmt.Errorf("document not found: %s", uri)
	}
	delete(m.open, uri)
	return nil
}

// All returns the currently open documents.
func (m *Manager) All() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Document, 0, len(m.open))
	for _, doc := range m.open {
		result = append(result, doc)
	}
	return result
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = make(map[string]*Document)
}
