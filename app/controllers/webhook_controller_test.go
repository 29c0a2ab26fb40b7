package controllers

import (
	"context"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/FelixKnapp/ShopFox/app/models"
	"github.com/FelixKnapp/ShopFox/internal/pkg/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "whsec_test"

// memRepo is a minimal in-memory payments.Repository for HTTP-level tests.
type memRepo struct {
	events      map[uint]*models.WebhookEvent
	byGatewayID map[string]uint
	orders      map[uint]*models.Order
	ordersByRef map[string]uint
	monitoring  []models.MonitoringEvent
	emailLogs   []models.EmailLog
	lastSweep   *time.Time
	nextID      uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		events:      make(map[uint]*models.WebhookEvent),
		byGatewayID: make(map[string]uint),
		orders:      make(map[uint]*models.Order),
		ordersByRef: make(map[string]uint),
	}
}

func (f *memRepo) CreateEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	if id, ok := f.byGatewayID[event.GatewayEventID]; ok {
		stored := *f.events[id]
		return false, &stored, nil
	}
	f.nextID++
	event.ID = f.nextID
	event.CreatedAt = time.Now()
	f.events[event.ID] = event
	f.byGatewayID[event.GatewayEventID] = event.ID
	stored := *event
	return true, &stored, nil
}

func (f *memRepo) GetEventByID(id uint) (*models.WebhookEvent, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *ev
	return &copied, nil
}

func (f *memRepo) SetEventOrderRef(id uint, orderRef string) error {
	if ev, ok := f.events[id]; ok {
		ev.GatewayOrderRef = orderRef
	}
	return nil
}

func (f *memRepo) MarkEventProcessed(id uint, latencyMs int64) error {
	ev := f.events[id]
	now := time.Now()
	ev.Status = models.WebhookStatusProcessed
	ev.ProcessedAt = &now
	ev.LatencyMs = &latencyMs
	ev.LastError = ""
	return nil
}

func (f *memRepo) MarkEventRetry(id uint, retryCount int, lastError string, final bool) error {
	ev := f.events[id]
	ev.RetryCount = retryCount
	ev.LastError = lastError
	if final {
		ev.Status = models.WebhookStatusFailed
	} else {
		ev.Status = models.WebhookStatusPending
	}
	return nil
}

func (f *memRepo) ListPendingEvents(limit int) ([]models.WebhookEvent, error) {
	var pending []models.WebhookEvent
	for _, ev := range f.events {
		if ev.Status == models.WebhookStatusPending {
			pending = append(pending, *ev)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (f *memRepo) GetOrderByGatewayRef(ref string) (*models.Order, error) {
	id, ok := f.ordersByRef[ref]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.orders[id]
	return &copied, nil
}

func (f *memRepo) GetOrderForNotification(id uint) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *memRepo) MarkOrderPaymentFailed(orderID uint) error {
	order := f.orders[orderID]
	if order.PaymentStatus != models.PaymentStatusPaid {
		order.PaymentStatus = models.PaymentStatusFailed
	}
	return nil
}

func (f *memRepo) CreateMonitoringEvent(event *models.MonitoringEvent) error {
	f.monitoring = append(f.monitoring, *event)
	return nil
}

func (f *memRepo) CreateEmailLog(entry *models.EmailLog) error {
	f.emailLogs = append(f.emailLogs, *entry)
	return nil
}

func (f *memRepo) GetLastSweepAt() (*time.Time, error) { return f.lastSweep, nil }
func (f *memRepo) SetLastSweepAt(t time.Time) error    { f.lastSweep = &t; return nil }

type memConfirmer struct {
	repo  *memRepo
	calls int
}

func (c *memConfirmer) ConfirmPayment(ctx context.Context, orderID uint, gatewayPaymentID string) error {
	c.calls++
	order := c.repo.orders[orderID]
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil
	}
	now := time.Now()
	order.PaymentStatus = models.PaymentStatusPaid
	order.Status = models.OrderStatusConfirmed
	order.GatewayPaymentID = gatewayPaymentID
	order.PaidAt = &now
	return nil
}

type memMailer struct {
	sent []string
}

func (m *memMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

func newWebhookTestApp(t *testing.T) (*fiber.App, *memRepo, *memConfirmer) {
	t.Helper()
	repo := newMemRepo()
	confirmer := &memConfirmer{repo: repo}
	mailer := &memMailer{}
	svc := payments.NewService(repo, confirmer, payments.NewDispatcher(repo, mailer), payments.NewMonitor(repo, mailer))
	ctrl := NewWebhookController(svc, payments.NewMonitor(repo, mailer))

	app := fiber.New()
	app.Post("/webhook", ctrl.HandleGatewayWebhook)
	return app, repo, confirmer
}

func addUnpaidOrder(repo *memRepo, id uint, ref string) {
	order := &models.Order{
		ID:              id,
		OrderNumber:     "ord-1",
		GatewayOrderRef: ref,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusUnpaid,
		Customer:        models.Customer{Email: "buyer@example.com"},
	}
	repo.orders[id] = order
	repo.ordersByRef[ref] = id
}

func postWebhook(t *testing.T, app *fiber.App, body, signature string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(respBody)
}

func TestWebhookEndToEnd(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", testSecret)
	app, repo, confirmer := newWebhookTestApp(t)
	addUnpaidOrder(repo, 1, "order_xyz")

	body := `{"event":"payment.captured","event_id":"evt_abc","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_xyz"}}}}`
	sig := payments.SignPayload([]byte(body), testSecret)

	status, respBody := postWebhook(t, app, body, sig)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", respBody)

	require.Len(t, repo.events, 1)
	for _, ev := range repo.events {
		assert.Equal(t, models.WebhookStatusProcessed, ev.Status)
	}
	assert.Equal(t, models.PaymentStatusPaid, repo.orders[1].PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, repo.orders[1].Status)
	require.Len(t, repo.emailLogs, 1)
	assert.Equal(t, models.EmailLogStatusSent, repo.emailLogs[0].Status)

	// Identical redelivery: acknowledged, nothing changes.
	status, respBody = postWebhook(t, app, body, sig)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", respBody)
	assert.Len(t, repo.events, 1)
	assert.Equal(t, 1, confirmer.calls)
	assert.Len(t, repo.emailLogs, 1)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", testSecret)
	app, repo, _ := newWebhookTestApp(t)

	body := `{"event":"payment.captured","event_id":"evt_abc"}`
	status, _ := postWebhook(t, app, body, "0000deadbeef")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Empty(t, repo.events, "rejected requests must leave no event row")

	status, _ = postWebhook(t, app, body, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Empty(t, repo.events)
}

func TestWebhookMissingSecretFailsOpenLoudly(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "")
	app, repo, _ := newWebhookTestApp(t)

	body := `{"event":"payment.captured","event_id":"evt_abc"}`
	status, respBody := postWebhook(t, app, body, payments.SignPayload([]byte(body), "anything"))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", respBody)

	assert.Empty(t, repo.events, "must not process without a configured secret")
	require.Len(t, repo.monitoring, 1)
	assert.Equal(t, models.SeverityCritical, repo.monitoring[0].Severity)
	assert.Equal(t, "webhook_secret_missing", repo.monitoring[0].Type)
}

func TestWebhookAcknowledgesUnparseableBody(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", testSecret)
	app, repo, _ := newWebhookTestApp(t)

	body := `{"event": not-json`
	sig := payments.SignPayload([]byte(body), testSecret)
	status, respBody := postWebhook(t, app, body, sig)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", respBody)
	// The raw body is still recorded for the sweeper under a hash key.
	require.Len(t, repo.events, 1)
	for _, ev := range repo.events {
		assert.True(t, strings.HasPrefix(ev.GatewayEventID, "hash:"))
		assert.Equal(t, models.WebhookStatusPending, ev.Status)
		assert.Equal(t, 1, ev.RetryCount)
	}
}
