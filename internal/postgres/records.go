package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/store"
)

// Records stores each collection as a table of JSONB documents:
//
//	CREATE TABLE <collection> (id text PRIMARY KEY, data jsonb NOT NULL, created_at timestamptz)
type Records struct{ DB *pgxpool.Pool }

var _ store.RecordStore = (*Records)(nil)

func table(collection string) string {
	return pgx.Identifier{strings.ToLower(collection)}.Sanitize()
}

// Migrate creates the collection tables if they are missing.
func (r *Records) Migrate(ctx context.Context, collections ...string) error {
	for _, c := range collections {
		_, err := r.DB.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+table(c)+` (
			id         text PRIMARY KEY,
			data       jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", c, err)
		}
	}
	return nil
}

func (r *Records) Select(ctx context.Context, coll string, q store.Query) ([]store.Record, error) {
	sql := `SELECT data FROM ` + table(coll)
	args := []any{}
	if len(q.Filter) > 0 {
		f, err := json.Marshal(q.Filter)
		if err != nil {
			return nil, apperr.Validation("filter: %v", err)
		}
		args = append(args, string(f))
		sql += ` WHERE data @> $1::jsonb`
	}
	if q.OrderBy != "" {
		args = append(args, q.OrderBy)
		sql += fmt.Sprintf(` ORDER BY data -> $%d::text`, len(args))
		if q.Desc {
			sql += ` DESC`
		}
		sql += `, created_at`
	} else {
		sql += ` ORDER BY created_at`
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Unavailable("select "+coll, err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec); err != nil {
			return nil, apperr.Unavailable("select "+coll, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("select "+coll, err)
	}
	return out, nil
}

func (r *Records) Insert(ctx context.Context, coll string, rec store.Record) (store.Record, error) {
	doc := store.Record{}
	for k, v := range rec {
		doc[k] = v
	}
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	doc["id"] = id

	var out store.Record
	err := r.DB.QueryRow(ctx,
		`INSERT INTO `+table(coll)+`(id, data) VALUES ($1, $2) RETURNING data`,
		id, doc,
	).Scan(&out)
	if err != nil {
		return nil, apperr.Unavailable("insert "+coll, err)
	}
	return out, nil
}

func (r *Records) Update(ctx context.Context, coll, id string, partial store.Record) (store.Record, error) {
	patch := store.Record{}
	for k, v := range partial {
		if k != "id" {
			patch[k] = v
		}
	}
	var out store.Record
	err := r.DB.QueryRow(ctx,
		`UPDATE `+table(coll)+` SET data = data || $2 WHERE id = $1 RETURNING data`,
		id, patch,
	).Scan(&out)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Unavailable("update "+coll, err)
	}
	return out, nil
}

func (r *Records) Delete(ctx context.Context, coll, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM `+table(coll)+` WHERE id = $1`, id)
	if err != nil {
		return apperr.Unavailable("delete "+coll, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	return nil
}

func (r *Records) GetByID(ctx context.Context, coll, id string) (store.Record, error) {
	var out store.Record
	err := r.DB.QueryRow(ctx, `SELECT data FROM `+table(coll)+` WHERE id = $1`, id).Scan(&out)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Unavailable("get "+coll, err)
	}
	return out, nil
}
