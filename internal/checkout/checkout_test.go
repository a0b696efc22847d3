package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sheon-shop/storefront/internal/apperr"
	"github.com/sheon-shop/storefront/internal/cart"
	"github.com/sheon-shop/storefront/internal/catalog"
	kafkax "github.com/sheon-shop/storefront/internal/kafka"
	"github.com/sheon-shop/storefront/internal/kv"
	"github.com/sheon-shop/storefront/internal/orders"
	"github.com/sheon-shop/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu   sync.Mutex
	msgs []kafkago.Message
}

func (p *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

var goodForm = Form{Name: "  Mona Ali ", Phone: "01012345678", Address: "12 Nile St, Cairo"}

func newService(mem *store.Memory, pub Publisher) *Service {
	return &Service{
		Orders:       &orders.Repo{Store: mem},
		Publisher:    pub,
		ShippingFee:  40,
		HandoffPhone: "201029472254",
		ServiceName:  "test",
		Now:          func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func filledCart(t *testing.T, kvs kv.Store) *cart.Cart {
	t.Helper()
	ctx := context.Background()
	c := cart.Load(ctx, kvs, cart.StorageKey, nil)
	require.NoError(t, c.Add(ctx, catalog.Product{ID: "A", Name: "Tote", Price: 250}))
	require.NoError(t, c.Add(ctx, catalog.Product{ID: "A", Name: "Tote", Price: 250}))
	require.NoError(t, c.Add(ctx, catalog.Product{ID: "B", Name: "Socks", Price: 40}))
	return c
}

func TestPlaceCreatesPendingOrder(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	pub := &capturePublisher{}
	kvs := kv.NewMemory()
	c := filledCart(t, kvs)

	res, err := newService(mem, pub).Place(ctx, c, goodForm, "req-1")
	require.NoError(t, err)

	o := res.Order
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, "Mona Ali", o.CustomerName)
	assert.Equal(t, 250.0*2+40+40, o.TotalPrice)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 2, o.Lines[0].Quantity)

	stored, err := mem.GetByID(ctx, store.CollectionOrders, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored["status"])

	assert.Equal(t, 0, c.Len())
	_, ok, _ := kvs.Get(ctx, cart.StorageKey)
	assert.False(t, ok, "cart storage cleared")

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, o.ID, string(pub.msgs[0].Key))
	assert.Equal(t, orders.EventOrderPlaced, kafkax.Header(pub.msgs[0], "x-event-type"))
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(pub.msgs[0].Value, &env))
	assert.Equal(t, "req-1", env.TraceID)
	payload, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, o.ID, payload.OrderID)

	assert.True(t, strings.HasPrefix(res.HandoffURL, "https://wa.me/201029472254?text="))
}

func TestPlaceValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	svc := newService(mem, nil)

	bad := []Form{
		{Name: "Mo", Phone: goodForm.Phone, Address: goodForm.Address},
		{Name: goodForm.Name, Phone: "0123", Address: goodForm.Address},
		{Name: goodForm.Name, Phone: "01312345678", Address: goodForm.Address},
		{Name: goodForm.Name, Phone: goodForm.Phone, Address: "St 1"},
	}
	for _, f := range bad {
		_, err := svc.Place(ctx, filledCart(t, kv.NewMemory()), f, "")
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", f)
	}

	_, err := svc.Place(ctx, cart.Load(ctx, kv.NewMemory(), cart.StorageKey, nil), goodForm, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	recs, err := mem.Select(ctx, store.CollectionOrders, store.Query{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPlaceStoreFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	mem.FailOn = func(op, coll, id string) error { return errors.New("down") }
	c := filledCart(t, kv.NewMemory())

	_, err := newService(mem, nil).Place(ctx, c, goodForm, "")
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	assert.Equal(t, 2, c.Len())
}

func TestMessage(t *testing.T) {
	p := orders.OrderPlacedPayload{
		CustomerName: "Mona", Phone: "01012345678", Address: "12 Nile St",
		Lines: []cart.Line{
			{ProductID: "A", Name: "Tote", Price: 250, Quantity: 2},
			{ProductID: "B", Name: "Socks", Price: 40.5, Quantity: 1},
		},
		TotalPrice: 580.5,
	}
	msg := Message(p)
	assert.Equal(t, strings.Join([]string{
		"*📦 New Order from SHEON*",
		"*Name:* Mona",
		"*Phone:* 01012345678",
		"*Address:* 12 Nile St",
		separator,
		"1. *Tote*",
		" Qty: 2 | 250 EGP",
		"2. *Socks*",
		" Qty: 1 | 40.5 EGP",
		separator,
		"*💰 Total: 580.5 EGP*",
	}, "\n"), msg)

	p.Lang = "ar"
	assert.Contains(t, Message(p), "الإجمالي")

	u, err := url.Parse(URL("201029472254", msg))
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, msg, u.Query().Get("text"))
	assert.NotContains(t, u.RawQuery, "+")
}
