// Package store defines the generic record store the order and inventory
// code talks to. A record is a loosely-typed document; typed entities are
// produced by the decoding step in the catalog and orders packages.
package store

import "context"

const (
	CollectionOrders   = "Orders"
	CollectionProducts = "Products"
)

// TimeLayout is how timestamps are written into records. It is fixed width
// so that every backend's string ordering on created_at is chronological.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one stored document. The "id" key holds its identifier.
type Record map[string]any

// ID returns the record identifier as a string, or "" when absent.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return stringify(v)
	}
}

// Query narrows a Select. Filter matches by field equality; OrderBy names a
// top-level field.
type Query struct {
	Filter  map[string]any
	OrderBy string
	Desc    bool
}

// RecordStore is the five-verb boundary. Implementations return
// apperr.ErrNotFound for missing ids and wrap any other failure as
// apperr.ErrStoreUnavailable. No transaction spans two collections.
type RecordStore interface {
	Select(ctx context.Context, collection string, q Query) ([]Record, error)
	Insert(ctx context.Context, collection string, rec Record) (Record, error)
	Update(ctx context.Context, collection, id string, partial Record) (Record, error)
	Delete(ctx context.Context, collection, id string) error
	GetByID(ctx context.Context, collection, id string) (Record, error)
}
