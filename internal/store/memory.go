package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sheon-shop/storefront/internal/apperr"
)

// Memory is an in-process RecordStore. Records are deep-copied through JSON
// on the way in and out so callers never share maps with the store, and
// stored values take the same shapes a JSON-backed store would return.
type Memory struct {
	mu    sync.RWMutex
	colls map[string]map[string]Record
	seq   map[string]int // insertion order for stable listing
	next  int

	// FailOn, when set, is consulted before every call; a non-nil error is
	// returned wrapped as ErrStoreUnavailable.
	FailOn func(op, collection, id string) error
}

func NewMemory() *Memory {
	return &Memory{colls: map[string]map[string]Record{}, seq: map[string]int{}}
}

func (m *Memory) fail(op, coll, id string) error {
	if m.FailOn == nil {
		return nil
	}
	if err := m.FailOn(op, coll, id); err != nil {
		return apperr.Unavailable(op, err)
	}
	return nil
}

func (m *Memory) Select(ctx context.Context, coll string, q Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable("select", err)
	}
	if err := m.fail("select", coll, ""); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type row struct {
		rec Record
		seq int
	}
	var rows []row
	for id, r := range m.colls[coll] {
		if !matches(r, q.Filter) {
			continue
		}
		rows = append(rows, row{rec: r, seq: m.seq[coll+"/"+id]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if q.OrderBy != "" {
			a, b := fmt.Sprint(rows[i].rec[q.OrderBy]), fmt.Sprint(rows[j].rec[q.OrderBy])
			if a != b {
				if q.Desc {
					return a > b
				}
				return a < b
			}
		}
		return rows[i].seq < rows[j].seq
	})

	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		c, err := clone(r.rec)
		if err != nil {
			return nil, apperr.Unavailable("select", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, coll string, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable("insert", err)
	}
	c, err := clone(rec)
	if err != nil {
		return nil, apperr.Unavailable("insert", err)
	}
	id := c.ID()
	if id == "" {
		id = uuid.NewString()
	}
	c["id"] = id
	if err := m.fail("insert", coll, id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.colls[coll] == nil {
		m.colls[coll] = map[string]Record{}
	}
	if _, dup := m.colls[coll][id]; dup {
		return nil, apperr.Unavailable("insert", fmt.Errorf("duplicate id %s", id))
	}
	m.colls[coll][id] = c
	m.next++
	m.seq[coll+"/"+id] = m.next
	return clone(c)
}

func (m *Memory) Update(ctx context.Context, coll, id string, partial Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable("update", err)
	}
	if err := m.fail("update", coll, id); err != nil {
		return nil, err
	}
	p, err := clone(partial)
	if err != nil {
		return nil, apperr.Unavailable("update", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.colls[coll][id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	for k, v := range p {
		if k == "id" {
			continue
		}
		cur[k] = v
	}
	return clone(cur)
}

func (m *Memory) Delete(ctx context.Context, coll, id string) error {
	if err := ctx.Err(); err != nil {
		return apperr.Unavailable("delete", err)
	}
	if err := m.fail("delete", coll, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.colls[coll][id]; !ok {
		return fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	delete(m.colls[coll], id)
	delete(m.seq, coll+"/"+id)
	return nil
}

func (m *Memory) GetByID(ctx context.Context, coll, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Unavailable("get", err)
	}
	if err := m.fail("get", coll, id); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.colls[coll][id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	return clone(r)
}

func matches(r Record, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := r[k]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(normalize(got), normalize(want)) {
			return false
		}
	}
	return true
}

func normalize(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func clone(r Record) (Record, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Record{}
	}
	return out, nil
}

func stringify(v any) string {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
	}
	return fmt.Sprint(v)
}
