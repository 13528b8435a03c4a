// Package memory provides an in-memory implementation of the document
// store. It backs the repository and orchestrator tests and is a
// usable backend for single-process deployments.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"learnhub-backend/infrastructure/persistence/abstractions"
	apperrors "learnhub-backend/pkg/errors"
)

// Store is a mutex-guarded map of collections. Documents are
// deep-copied on the way in and out so callers can never mutate
// stored state through a returned reference.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]abstractions.Document

	// failNextBatch makes the next AtomicBatch fail before applying
	// anything. Tests use it to verify all-or-nothing behavior.
	failNextBatch bool

	// failNextQuery makes the next Query fail. Tests use it to
	// exercise read-error degradation paths.
	failNextQuery bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]abstractions.Document),
	}
}

// FailNextBatch arms a one-shot commit failure.
func (s *Store) FailNextBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextBatch = true
}

// FailNextQuery arms a one-shot query failure.
func (s *Store) FailNextQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextQuery = true
}

// Get retrieves one document by id, or (nil, nil) if absent.
func (s *Store) Get(ctx context.Context, collection, id string) (abstractions.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return copyDoc(doc), nil
}

// Query returns the documents of a collection matching the criteria.
// Ordering is unspecified; callers sort in memory.
func (s *Store) Query(ctx context.Context, collection string, criteria abstractions.QueryCriteria) ([]abstractions.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextQuery {
		s.failNextQuery = false
		return nil, apperrors.NewUnavailableError("memory", nil)
	}

	docs := make([]abstractions.Document, 0)
	for _, doc := range s.collections[collection] {
		if matches(doc, criteria.Filters) {
			docs = append(docs, copyDoc(doc))
		}
		if criteria.Limit > 0 && len(docs) >= criteria.Limit {
			break
		}
	}
	return docs, nil
}

// Set creates or replaces a document.
func (s *Store) Set(ctx context.Context, collection, id string, doc abstractions.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureCollection(collection)[id] = copyDoc(doc)
	return nil
}

// Update merges the given fields into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, partial abstractions.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyUpdate(collection, id, partial)
}

// Delete removes an existing document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return apperrors.NewNotFoundError("document " + collection + "/" + id)
	}
	delete(s.collections[collection], id)
	return nil
}

// AtomicBatch commits all staged operations together or not at all.
// Every operation is validated against the current state before any
// mutation happens, so a failing update leaves the store untouched.
func (s *Store) AtomicBatch(ctx context.Context, ops []abstractions.BatchOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNextBatch {
		s.failNextBatch = false
		return apperrors.NewUnavailableError("memory", nil)
	}

	// Validation pass. Update targets must exist either in the store
	// or earlier in the same batch.
	staged := make(map[string]bool)
	for _, op := range ops {
		key := op.Collection + "/" + op.ID
		switch op.Kind {
		case abstractions.BatchSet:
			staged[key] = true
		case abstractions.BatchUpdate:
			if _, ok := s.collections[op.Collection][op.ID]; !ok && !staged[key] {
				return apperrors.NewNotFoundError("document " + key)
			}
		default:
			return apperrors.NewValidationError("unknown batch operation kind: " + string(op.Kind))
		}
	}

	// Apply pass.
	for _, op := range ops {
		switch op.Kind {
		case abstractions.BatchSet:
			s.ensureCollection(op.Collection)[op.ID] = copyDoc(op.Doc)
		case abstractions.BatchUpdate:
			if err := s.applyUpdate(op.Collection, op.ID, op.Doc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) ensureCollection(collection string) map[string]abstractions.Document {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]abstractions.Document)
	}
	return s.collections[collection]
}

func (s *Store) applyUpdate(collection, id string, partial abstractions.Document) error {
	doc, ok := s.collections[collection][id]
	if !ok {
		return apperrors.NewNotFoundError("document " + collection + "/" + id)
	}
	for field, value := range copyDoc(partial) {
		doc[field] = value
	}
	return nil
}

func matches(doc abstractions.Document, filters []abstractions.Filter) bool {
	for _, f := range filters {
		if doc[f.Field] != f.Value {
			return false
		}
	}
	return true
}

// copyDoc deep-copies a document through a JSON round trip, which
// also forces every document into its canonical JSON shape.
func copyDoc(doc abstractions.Document) abstractions.Document {
	raw, err := json.Marshal(doc)
	if err != nil {
		// Documents are JSON-shaped by construction.
		return abstractions.Document{}
	}
	var out abstractions.Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return abstractions.Document{}
	}
	return out
}
