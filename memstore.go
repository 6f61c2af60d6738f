package fiado

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a DocumentStore that keeps documents in memory.
// Its zero value is ready to use.
type MemoryStore struct {
	mu    sync.Mutex
	docs  map[Collection]map[string]Document
	order map[Collection][]string // ids in creation order
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) collection(c Collection) map[string]Document {
	if s.docs == nil {
		s.docs = make(map[Collection]map[string]Document)
		s.order = make(map[Collection][]string)
	}
	if s.docs[c] == nil {
		s.docs[c] = make(map[string]Document)
	}
	return s.docs[c]
}

// List returns documents in creation order.
func (s *MemoryStore) List(ctx context.Context, c Collection) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collection(c)
	out := make([]Document, 0, len(docs))
	for _, id := range s.order[c] {
		if d, ok := docs[id]; ok {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, c Collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.collection(c)[id]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	return clone(d), nil
}

func (s *MemoryStore) Create(ctx context.Context, c Collection, data json.RawMessage) (Document, error) {
	return s.Put(ctx, c, uuid.NewString(), data, 0)
}

func (s *MemoryStore) Put(ctx context.Context, c Collection, id string, data json.RawMessage, expect int64) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if !json.Valid(data) {
		return Document{}, fmt.Errorf("%s/%s: invalid json document", c, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collection(c)
	old, exists := docs[id]
	if expect != AnyVersion && old.Version != expect {
		return Document{}, fmt.Errorf("%s/%s at version %d, expected %d: %w", c, id, old.Version, expect, ErrConflict)
	}
	d := clone(Document{ID: id, Version: old.Version + 1, Data: data})
	docs[id] = d
	if !exists {
		s.order[c] = append(s.order[c], id)
	}
	return clone(d), nil
}

func (s *MemoryStore) Delete(ctx context.Context, c Collection, id string, expect int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collection(c)
	old, ok := docs[id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	if expect != AnyVersion && old.Version != expect {
		return fmt.Errorf("%s/%s at version %d, expected %d: %w", c, id, old.Version, expect, ErrConflict)
	}
	delete(docs, id)
	order := s.order[c]
	for i, o := range order {
		if o == id {
			s.order[c] = append(order[:i:i], order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, c Collection, field, value string) ([]Document, error) {
	docs, err := s.List(ctx, c)
	if err != nil {
		return nil, err
	}
	var out []Document
	for _, d := range docs {
		ok, err := MatchField(d.Data, field, value)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", c, d.ID, err)
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// clone returns a copy of d that does not share its data buffer.
func clone(d Document) Document {
	d.Data = append(json.RawMessage(nil), d.Data...)
	return d
}
