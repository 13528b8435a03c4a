package abstractions

import "context"

// Document is a single stored record in its JSON shape: string,
// float64, bool, nil, nested map[string]interface{} and
// []interface{} values only. Entities are converted to this shape
// before they reach a store, so backends never see Go-native time or
// struct values.
type Document = map[string]interface{}

// Filter is an equality predicate on a top-level document field.
// Stores only support equality; anything richer is filtered in
// application memory to avoid requiring backend composite indexes.
type Filter struct {
	Field string
	Value interface{}
}

// QueryCriteria represents backend-agnostic query parameters.
type QueryCriteria struct {
	Filters []Filter
	Limit   int
}

// BatchOpKind is the type of a staged batch operation.
type BatchOpKind string

const (
	BatchSet    BatchOpKind = "set"
	BatchUpdate BatchOpKind = "update"
)

// BatchOp is one write staged into an atomic batch. Set replaces the
// whole document; Update merges the given fields into an existing
// document and fails the batch if the target is absent.
type BatchOp struct {
	Kind       BatchOpKind
	Collection string
	ID         string
	Doc        Document
}

// Store provides a database-agnostic document store. Implementations
// must make AtomicBatch all-or-nothing: no operation in the batch is
// observable unless every operation committed.
//
// Error contract: Get returns (nil, nil) for an absent document;
// Update and Delete return a NOT_FOUND error when the target does not
// exist; transport/connection failures surface as UNAVAILABLE-typed
// errors so callers can distinguish them from logical failures.
type Store interface {
	// Get retrieves one document by id, or (nil, nil) if absent.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns the documents of a collection matching the
	// criteria. Ordering is backend-defined; callers sort in memory.
	Query(ctx context.Context, collection string, criteria QueryCriteria) ([]Document, error)

	// Set creates or replaces a document.
	Set(ctx context.Context, collection, id string, doc Document) error

	// Update merges the given fields into an existing document.
	Update(ctx context.Context, collection, id string, partial Document) error

	// Delete removes an existing document.
	Delete(ctx context.Context, collection, id string) error

	// AtomicBatch commits all staged operations together or not at
	// all.
	AtomicBatch(ctx context.Context, ops []BatchOp) error
}
