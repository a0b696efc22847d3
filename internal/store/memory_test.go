package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec, err := m.Insert(ctx, CollectionProducts, Record{"Name": "Tote", "Stock": 5})
	require.NoError(t, err)
	id := rec.ID()
	require.NotEmpty(t, id)

	got, err := m.GetByID(ctx, CollectionProducts, id)
	require.NoError(t, err)
	assert.Equal(t, "Tote", got["Name"])
	assert.Equal(t, float64(5), got["Stock"])

	upd, err := m.Update(ctx, CollectionProducts, id, Record{"Stock": 2, "id": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, float64(2), upd["Stock"])
	assert.Equal(t, id, upd.ID())

	require.NoError(t, m.Delete(ctx, CollectionProducts, id))
	_, err = m.GetByID(ctx, CollectionProducts, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, CollectionProducts, id), apperr.ErrNotFound)
	_, err = m.Update(ctx, CollectionProducts, id, Record{"Stock": 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	rec, err := m.Insert(ctx, CollectionOrders, Record{"items": []any{map[string]any{"id": "A"}}})
	require.NoError(t, err)

	rec["items"].([]any)[0].(map[string]any)["id"] = "B"
	got, err := m.GetByID(ctx, CollectionOrders, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "A", got["items"].([]any)[0].(map[string]any)["id"])
}

func TestMemorySelectFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, r := range []Record{
		{"id": "1", "status": "pending", "created_at": "2026-01-01"},
		{"id": "2", "status": "completed", "created_at": "2026-01-03"},
		{"id": "3", "status": "pending", "created_at": "2026-01-02"},
	} {
		_, err := m.Insert(ctx, CollectionOrders, r)
		require.NoError(t, err)
	}

	all, err := m.Select(ctx, CollectionOrders, Query{OrderBy: "created_at", Desc: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{all[0].ID(), all[1].ID(), all[2].ID()})

	pending, err := m.Select(ctx, CollectionOrders, Query{Filter: map[string]any{"status": "pending"}})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestMemoryFailureIsUnavailable(t *testing.T) {
	m := NewMemory()
	m.FailOn = func(op, coll, id string) error {
		if op == "update" {
			return errors.New("boom")
		}
		return nil
	}
	rec, err := m.Insert(context.Background(), CollectionProducts, Record{"Stock": 1})
	require.NoError(t, err)
	_, err = m.Update(context.Background(), CollectionProducts, rec.ID(), Record{"Stock": 0})
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.GetByID(ctx, CollectionProducts, rec.ID())
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "12", Record{"id": float64(12)}.ID())
	assert.Equal(t, "", Record{}.ID())
	assert.Equal(t, "x", Record{"id": "x"}.ID())
}
