package redisx

import "time"

const (
	// Cart/wishlist contents: kv:{storage key}:{session}
	KeyKV = "kv:%s"

	// Cached order status: order_status:{order_id} -> {"id": "...", "status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Exclusive scopes: mutex:{lock key}
	KeyMutex = "mutex:%s"
)

var (
	TTLSession     = 30 * 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
