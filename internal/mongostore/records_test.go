package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromDocNormalizesDriverTypes(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := bson.M{
		"_id":    "o1",
		"status": "pending",
		"items": bson.A{
			bson.M{"id": "A", "quantity": int32(2)},
			bson.D{{Key: "id", Value: "B"}},
		},
		"created_at": primitive.NewDateTimeFromTime(ts),
	}

	rec := fromDoc(doc)
	assert.Equal(t, "o1", rec.ID())
	items := rec["items"].([]any)
	assert.Equal(t, map[string]any{"id": "A", "quantity": int32(2)}, items[0])
	assert.Equal(t, map[string]any{"id": "B"}, items[1])
	assert.Equal(t, "2026-03-01T10:00:00.000000000Z", rec["created_at"])
}

func TestFieldMapsID(t *testing.T) {
	assert.Equal(t, "_id", field("id"))
	assert.Equal(t, "status", field("status"))
}
