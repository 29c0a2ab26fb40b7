package payments

import (
	"context"
	"testing"
	"time"

	"github.com/FelixKnapp/ShopFox/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOnce_RedrivesPendingEvents(t *testing.T) {
	p := newTestPipeline()
	p.addUnpaidOrder(1, "order_a")
	p.addUnpaidOrder(2, "order_b")

	// Two stuck events, e.g. from a crashed handler.
	for i, ref := range []string{"order_a", "order_b"} {
		_, _, err := p.svc.RecordEvent(context.Background(), EventInput{
			GatewayEventID: "evt_" + ref,
			EventType:      "payment.captured",
			PayloadJSON:    capturedBody("evt_"+ref, ref),
		})
		require.NoError(t, err)
		_ = i
	}

	sweeper := NewSweeper(p.svc, p.repo, nil, time.Minute)
	attempted, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, attempted)

	assert.Equal(t, models.PaymentStatusPaid, p.repo.orders[1].PaymentStatus)
	assert.Equal(t, models.PaymentStatusPaid, p.repo.orders[2].PaymentStatus)

	last, err := p.repo.GetLastSweepAt()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.WithinDuration(t, time.Now(), *last, 5*time.Second)

	// Second sweep has nothing left to redrive.
	attempted, err = sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, attempted)
}

func TestSweepOnce_RedriveAfterPartialFailureIsIdempotent(t *testing.T) {
	p := newTestPipeline()
	p.addUnpaidOrder(1, "order_a")

	// First attempt fails after the confirm step would have run.
	p.confirmer.err = assert.AnError
	event := p.recordAndProcess(t, capturedBody("evt_p", "order_a"))
	require.Equal(t, models.WebhookStatusPending, event.Status)

	// Simulate the partial success: the transactional confirm actually
	// committed even though the handler died before marking the event.
	p.confirmer.err = nil
	now := time.Now()
	p.repo.orders[1].PaymentStatus = models.PaymentStatusPaid
	p.repo.orders[1].Status = models.OrderStatusConfirmed
	p.repo.orders[1].PaidAt = &now

	sweeper := NewSweeper(p.svc, p.repo, nil, time.Minute)
	attempted, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, attempted)

	// The paid short-circuit closes the event without re-running side effects.
	refreshed, err := p.repo.GetEventByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WebhookStatusProcessed, refreshed.Status)
	assert.Empty(t, p.repo.emailLogs)
}

func TestSweeperStartStop(t *testing.T) {
	p := newTestPipeline()
	sweeper := NewSweeper(p.svc, p.repo, nil, 10*time.Millisecond)

	sweeper.Start()
	// Starting twice is a no-op.
	sweeper.Start()
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()
	// Stopping twice is a no-op.
	sweeper.Stop()

	last, err := p.repo.GetLastSweepAt()
	require.NoError(t, err)
	assert.NotNil(t, last)
}
