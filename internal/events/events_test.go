package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
)

type fakeChannel struct {
	mu        sync.Mutex
	declared  []string
	published []amqp.Publishing
	keys      []string
	closed    bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisherPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	closed := false
	publisher := NewAMQPPublisher("amqp://test", "timetable.events").WithDialer(func(url string) (Channel, func(), error) {
		assert.Equal(t, "amqp://test", url)
		return ch, func() { closed = true }, nil
	})

	event := New(TypeTimetableGenerated, GeneratedPayload{RunID: "run-1", EntriesCreated: 4})
	require.NoError(t, publisher.Publish(context.Background(), event))

	assert.True(t, closed)
	assert.Equal(t, []string{"timetable.events"}, ch.declared)
	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, event.ID, msg.MessageId)
	assert.Empty(t, msg.CorrelationId)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, TypeTimetableGenerated, decoded["type"])
	assert.Equal(t, "run-1", decoded["payload"].(map[string]interface{})["run_id"])
}

func TestAMQPPublisherDialFailure(t *testing.T) {
	publisher := NewAMQPPublisher("amqp://down", "q").WithDialer(func(string) (Channel, func(), error) {
		return nil, nil, errors.New("connection refused")
	})
	err := publisher.Publish(context.Background(), New(TypeEntryChanged, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amqp dial")
}

type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	done     chan Event
}

func (p *flakyPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	p.calls++
	fail := p.calls <= p.failures
	p.mu.Unlock()
	if fail {
		return errors.New("broker unavailable")
	}
	p.done <- event
	return nil
}

func TestDispatcherRetriesUntilPublished(t *testing.T) {
	publisher := &flakyPublisher{failures: 1, done: make(chan Event, 1)}
	var mu sync.Mutex
	var outcomes []bool
	dispatcher := NewDispatcher(publisher, DispatcherConfig{
		Workers:    1,
		Retries:    3,
		RetryDelay: 10 * time.Millisecond,
		Observe: func(eventType string, err error) {
			mu.Lock()
			outcomes = append(outcomes, err == nil)
			mu.Unlock()
		},
	}, nil)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop(context.Background())

	event := New(TypeGenerationFailed, FailedPayload{RunID: "run-2", Reason: "no slot"})
	dispatcher.Dispatch(event)

	select {
	case got := <-publisher.done:
		assert.Equal(t, event.ID, got.ID)
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(outcomes) == 2
		}, time.Second, 5*time.Millisecond)
		mu.Lock()
		assert.Equal(t, []bool{false, true}, outcomes)
		mu.Unlock()
	case <-time.After(2 * time.Second):
		t.Fatal("event was not published")
	}
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var dispatcher *Dispatcher
	dispatcher.Start(context.Background())
	dispatcher.Dispatch(New(TypeEntryChanged, nil))
	dispatcher.Stop(context.Background())
}

func TestEventCarriesRequestID(t *testing.T) {
	ch := &fakeChannel{}
	publisher := NewAMQPPublisher("amqp://test", "q").WithDialer(func(string) (Channel, func(), error) {
		return ch, func() {}, nil
	})
	ctx := requestid.NewContext(context.Background(), "req-77")

	event := New(TypeEntryChanged, EntryChangedPayload{StreamID: "s1", Action: "deleted"}).WithRequestID(ctx)
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "req-77", ch.published[0].CorrelationId)
	assert.Contains(t, string(ch.published[0].Body), `"request_id":"req-77"`)
}
