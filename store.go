package fiado

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Collection names a family of documents in a DocumentStore.
type Collection string

const (
	Customers Collection = "customers"
	Users     Collection = "users"
	Expenses  Collection = "expenses"
)

// AnyVersion makes DocumentStore.Put write unconditionally.
const AnyVersion int64 = -1

// Document is a loosely typed record as persisted in a DocumentStore.
//
// Version starts at 1 when the document is created and is incremented by every
// write. A document that does not exist has version 0.
type Document struct {
	ID      string
	Version int64
	Data    json.RawMessage
}

// DocumentStore durably persists documents grouped in collections.
type DocumentStore interface {
	// List returns all documents of a collection.
	List(ctx context.Context, c Collection) ([]Document, error)
	// Get returns a document, or ErrNotFound.
	Get(ctx context.Context, c Collection, id string) (Document, error)
	// Create stores a new document under a fresh id.
	Create(ctx context.Context, c Collection, data json.RawMessage) (Document, error)
	// Put replaces the whole document at id, creating it if needed.
	//
	// Unless expect is AnyVersion, the write fails with ErrConflict when the
	// stored version is not expect.
	Put(ctx context.Context, c Collection, id string, data json.RawMessage, expect int64) (Document, error)
	// Delete removes a document, or returns ErrNotFound.
	//
	// Unless expect is AnyVersion, it fails with ErrConflict when the stored
	// version is not expect.
	Delete(ctx context.Context, c Collection, id string, expect int64) error
	// Find returns the documents whose top level field equals value.
	Find(ctx context.Context, c Collection, field, value string) ([]Document, error)
}

// MatchField reports whether the JSON document has a top level field equal to
// value. Non string fields are compared by their JSON text.
func MatchField(data json.RawMessage, field, value string) (bool, error) {
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return false, fmt.Errorf("invalid document: %w", err)
	}
	jval, err := jsonpath.Get("$["+quote(field)+"]", jobj)
	if err != nil {
		// unknown key.
		return false, nil
	}
	switch v := jval.(type) {
	case string:
		return v == value, nil
	case nil:
		return false, nil
	default:
		b, _ := json.Marshal(v)
		return string(b) == value, nil
	}
}

// quote returns field as a jsonpath string literal.
func quote(field string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(field) + `"`
}
