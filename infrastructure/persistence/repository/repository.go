// Package repository implements the entity repositories over the
// generic document store. Repositories convert entities to their
// JSON document shape on writes and run every read through the
// normalizer, so heterogeneous stored shapes never reach callers.
//
// Queries that would need a compound backend index (userId AND
// workshopId AND status, slug AND status) instead fetch the broader
// set and filter/sort in application memory. This is a deliberate
// cost/simplicity tradeoff, not an oversight.
package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"learnhub-backend/infrastructure/persistence/abstractions"
)

// Collection names shared by all backends.
const (
	CollectionUsers       = "users"
	CollectionWorkshops   = "workshops"
	CollectionEnrollments = "enrollments"
	CollectionPayments    = "payments"
	CollectionModules     = "modules"
)

// toDoc converts an entity to its JSON document shape. Timestamps
// become RFC3339Nano strings, numbers become float64; this is the
// only shape stores ever see.
func toDoc(entity interface{}) (abstractions.Document, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	var doc abstractions.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}
	return doc, nil
}

// newID allocates a document id.
func newID() string {
	return uuid.New().String()
}

// nowString is the stored representation of a server-generated
// timestamp.
func nowString(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
