package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestProducerFlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "t", 16, nil)
	p.Start(context.Background())

	p.Publish([]byte("o1"), []byte("a"), EventHeaders("OrderPlaced", 1)...)
	p.Publish([]byte("o2"), []byte("b"))
	p.Close()
	p.Close()
	p.WaitClosed()
	p.Publish([]byte("o3"), []byte("late"))

	require.Len(t, w.msgs, 2)
	assert.True(t, w.closed)
	assert.Equal(t, "OrderPlaced", Header(w.msgs[0], "x-event-type"))
	assert.Equal(t, "1", Header(w.msgs[0], "x-event-version"))
	assert.Equal(t, "", Header(w.msgs[1], "x-event-type"))
}

func TestProducerDropsWhenFull(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "t", 1, nil)
	// Not started: the buffer holds exactly one message.
	p.Publish(nil, []byte("kept"))
	p.Publish(nil, []byte("dropped"))
	p.Start(context.Background())
	p.Close()
	p.WaitClosed()
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "kept", string(w.msgs[0].Value))
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, io.EOF
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func TestConsumerCommitsOnlySuccesses(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Offset: 1}, {Offset: 2}, {Offset: 3}}}
	c := NewConsumerWithReader(r, 2, nil)
	c.retryBase = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(_ context.Context, m kafka.Message) error {
			if m.Offset == 2 {
				return errors.New("bad message")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool { return len(r.commits()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.ElementsMatch(t, []int64{1, 3}, r.commits())
}

func TestConsumerRetriesTransientFailure(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Offset: 7}}}
	c := NewConsumerWithReader(r, 1, nil)
	c.retryBase = time.Millisecond

	var mu sync.Mutex
	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx, func(_ context.Context, _ kafka.Message) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls < 3 {
				return errors.New("redis timeout")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool { return len(r.commits()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []int64{7}, r.commits())
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}

func TestUnwrapPayload(t *testing.T) {
	type p struct {
		OrderID string `json:"order_id"`
	}
	got, err := UnwrapPayload[p]([]byte(`{"order_id":"o1"}`))
	require.NoError(t, err)
	assert.Equal(t, "o1", got.OrderID)

	_, err = UnwrapPayload[p]([]byte(`nope`))
	assert.Error(t, err)
}
