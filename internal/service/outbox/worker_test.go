package outbox_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// stubPublisher считает вызовы и возвращает ошибку первые failFirst раз.
type stubPublisher struct {
	mu        sync.Mutex
	failFirst int
	err       error
	published []domain.OutboxMessage
	calls     int
}

func (p *stubPublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.calls <= p.failFirst {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

func (p *stubPublisher) Published() []domain.OutboxMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OutboxMessage(nil), p.published...)
}

func (p *stubPublisher) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func enqueue(t *testing.T, repo *memory.OutboxRepository, eventType string) domain.OutboxMessage {
	t.Helper()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     eventType,
		Payload:       []byte(`{"order_id":"order-1"}`),
	})
	require.NoError(t, err)
	return msg
}

func TestWorkerProcessOncePublishesPending(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	worker := outbox.NewWorker(repo, publisher)

	enqueue(t, repo, "order.created")
	enqueue(t, repo, "order.status_changed")

	worker.ProcessOnce(context.Background())

	require.Len(t, publisher.Published(), 2)

	stats, err := repo.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.PendingCount)
}

func TestWorkerRetriesTransientFailures(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failFirst: 2, err: domain.ErrOutboxPublish}
	worker := outbox.NewWorker(repo, publisher,
		outbox.WithMaxAttempts(3),
		outbox.WithRetryBaseDelay(0),
	)

	enqueue(t, repo, "order.created")

	worker.ProcessOnce(context.Background())

	require.Equal(t, 3, publisher.Calls())
	require.Len(t, publisher.Published(), 1)

	stats, err := repo.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.PendingCount)
}

func TestWorkerSendsToDLQAfterExhaustedRetries(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{failFirst: 100, err: domain.ErrOutboxPublish}
	dlq := &stubPublisher{}
	worker := outbox.NewWorker(repo, publisher,
		outbox.WithMaxAttempts(2),
		outbox.WithRetryBaseDelay(0),
		outbox.WithDLQPublisher(dlq),
	)

	msg := enqueue(t, repo, "order.created")

	worker.ProcessOnce(context.Background())

	require.Equal(t, 2, publisher.Calls())

	dead := dlq.Published()
	require.Len(t, dead, 1)
	require.Equal(t, msg.ID, dead[0].ID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(dead[0].Payload, &payload))
	require.Contains(t, payload, "publish_error")
	require.Equal(t, "order.created", payload["event_type"])

	// Сообщение помечено failed и не возвращается в выборку pending.
	pending, err := repo.PullPending(10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestWorkerRespectsBatchSize(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	worker := outbox.NewWorker(repo, publisher, outbox.WithBatchSize(1))

	enqueue(t, repo, "order.created")
	enqueue(t, repo, "order.created")

	worker.ProcessOnce(context.Background())
	require.Len(t, publisher.Published(), 1)

	worker.ProcessOnce(context.Background())
	require.Len(t, publisher.Published(), 2)
}

func TestWorkerRunStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}
	worker := outbox.NewWorker(repo, publisher, outbox.WithPollInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	enqueue(t, repo, "order.created")
	require.Eventually(t, func() bool {
		return len(publisher.Published()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
