package index

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is an insertion-ordered in-memory repository used for
// unit tests and mongo-less development runs.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs []Document
	byURL map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byURL: make(map[string]int)}
}

func (m *MemoryRepository) Upsert(ctx context.Context, url, title, description string, fetchedAt time.Time) (UpsertResult, *Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.byURL[url]; ok {
		existing := m.docs[i]
		if existing.Title == title && existing.Description == description {
			cp := existing
			return Unchanged, &cp, nil
		}
		m.docs[i].Title = title
		m.docs[i].Description = description
		m.docs[i].LastFetched = fetchedAt
		cp := m.docs[i]
		return Updated, &cp, nil
	}
	doc := Document{URL: url, Title: title, Description: description, LastFetched: fetchedAt}
	m.byURL[url] = len(m.docs)
	m.docs = append(m.docs, doc)
	return Created, &doc, nil
}

func (m *MemoryRepository) FindBySubstring(ctx context.Context, field Field, needle string, page int) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if page < 0 {
		page = 0
	}
	lowered := strings.ToLower(needle)
	matched := []Document{}
	for _, d := range m.docs {
		var hay string
		switch field {
		case FieldTitle:
			hay = d.Title
		case FieldURL:
			hay = d.URL
		case FieldDescription:
			hay = d.Description
		default:
			return nil, ErrUnknownField
		}
		if strings.Contains(strings.ToLower(hay), lowered) {
			matched = append(matched, d)
		}
	}
	start := page * PageSize
	if start >= len(matched) {
		return []Document{}, nil
	}
	end := start + PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (m *MemoryRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.docs)), nil
}

func (m *MemoryRepository) All(ctx context.Context) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}
