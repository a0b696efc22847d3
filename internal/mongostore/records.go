// Package mongostore backs the record store with MongoDB. Documents use the
// record id as _id and are returned with it mapped back to "id".
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Records struct{ DB *mongo.Database }

var _ store.RecordStore = (*Records)(nil)

func Connect(ctx context.Context, uri, database string) (*mongo.Client, *Records, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, &Records{DB: client.Database(database)}, nil
}

func (r *Records) Select(ctx context.Context, coll string, q store.Query) ([]store.Record, error) {
	filter := bson.M{}
	for k, v := range q.Filter {
		filter[field(k)] = v
	}
	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: field(q.OrderBy), Value: dir}})
	}
	cur, err := r.DB.Collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Unavailable("select "+coll, err)
	}
	defer cur.Close(ctx)

	var out []store.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, apperr.Unavailable("select "+coll, err)
		}
		out = append(out, fromDoc(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Unavailable("select "+coll, err)
	}
	return out, nil
}

func (r *Records) Insert(ctx context.Context, coll string, rec store.Record) (store.Record, error) {
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
	}
	doc := bson.M{"_id": id}
	for k, v := range rec {
		if k != "id" {
			doc[k] = v
		}
	}
	if _, err := r.DB.Collection(coll).InsertOne(ctx, doc); err != nil {
		return nil, apperr.Unavailable("insert "+coll, err)
	}
	return fromDoc(doc), nil
}

func (r *Records) Update(ctx context.Context, coll, id string, partial store.Record) (store.Record, error) {
	set := bson.M{}
	for k, v := range partial {
		if k != "id" {
			set[k] = v
		}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bson.M
	err := r.DB.Collection(coll).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Unavailable("update "+coll, err)
	}
	return fromDoc(doc), nil
}

func (r *Records) Delete(ctx context.Context, coll, id string) error {
	res, err := r.DB.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Unavailable("delete "+coll, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	return nil
}

func (r *Records) GetByID(ctx context.Context, coll, id string) (store.Record, error) {
	var doc bson.M
	err := r.DB.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %s: %w", coll, id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Unavailable("get "+coll, err)
	}
	return fromDoc(doc), nil
}

func field(k string) string {
	if k == "id" {
		return "_id"
	}
	return k
}

func fromDoc(doc bson.M) store.Record {
	out := store.Record{}
	for k, v := range doc {
		if k == "_id" {
			k = "id"
		}
		out[k] = plain(v)
	}
	return out
}

// plain converts driver container types into the map/slice shapes the
// decoders expect.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = plain(x)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = plain(x)
		}
		return s
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(store.TimeLayout)
	default:
		return v
	}
}
