package payments

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/FelixKnapp/ShopFox/app/models"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory Repository for state machine tests.
type fakeRepo struct {
	events      map[uint]*models.WebhookEvent
	byGatewayID map[string]uint
	orders      map[uint]*models.Order
	ordersByRef map[string]uint
	monitoring  []models.MonitoringEvent
	emailLogs   []models.EmailLog
	lastSweep   *time.Time
	nextID      uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:      make(map[uint]*models.WebhookEvent),
		byGatewayID: make(map[string]uint),
		orders:      make(map[uint]*models.Order),
		ordersByRef: make(map[string]uint),
	}
}

func (f *fakeRepo) addOrder(order *models.Order) {
	f.orders[order.ID] = order
	if order.GatewayOrderRef != "" {
		f.ordersByRef[order.GatewayOrderRef] = order.ID
	}
}

func (f *fakeRepo) CreateEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
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

func (f *fakeRepo) GetEventByID(id uint) (*models.WebhookEvent, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *ev
	return &copied, nil
}

func (f *fakeRepo) SetEventOrderRef(id uint, orderRef string) error {
	if ev, ok := f.events[id]; ok {
		ev.GatewayOrderRef = orderRef
	}
	return nil
}

func (f *fakeRepo) MarkEventProcessed(id uint, latencyMs int64) error {
	ev, ok := f.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	ev.Status = models.WebhookStatusProcessed
	ev.ProcessedAt = &now
	ev.LatencyMs = &latencyMs
	ev.LastError = ""
	return nil
}

func (f *fakeRepo) MarkEventRetry(id uint, retryCount int, lastError string, final bool) error {
	ev, ok := f.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ev.RetryCount = retryCount
	ev.LastError = lastError
	if final {
		ev.Status = models.WebhookStatusFailed
	} else {
		ev.Status = models.WebhookStatusPending
	}
	return nil
}

func (f *fakeRepo) ListPendingEvents(limit int) ([]models.WebhookEvent, error) {
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

func (f *fakeRepo) GetOrderByGatewayRef(ref string) (*models.Order, error) {
	id, ok := f.ordersByRef[ref]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.orders[id]
	return &copied, nil
}

func (f *fakeRepo) GetOrderForNotification(id uint) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeRepo) MarkOrderPaymentFailed(orderID uint) error {
	order, ok := f.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if order.PaymentStatus != models.PaymentStatusPaid {
		order.PaymentStatus = models.PaymentStatusFailed
	}
	return nil
}

func (f *fakeRepo) CreateMonitoringEvent(event *models.MonitoringEvent) error {
	f.monitoring = append(f.monitoring, *event)
	return nil
}

func (f *fakeRepo) CreateEmailLog(entry *models.EmailLog) error {
	f.emailLogs = append(f.emailLogs, *entry)
	return nil
}

func (f *fakeRepo) GetLastSweepAt() (*time.Time, error) {
	return f.lastSweep, nil
}

func (f *fakeRepo) SetLastSweepAt(t time.Time) error {
	f.lastSweep = &t
	return nil
}

func (f *fakeRepo) emailLogsByStatus(status string) []models.EmailLog {
	var out []models.EmailLog
	for _, l := range f.emailLogs {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeRepo) monitoringBySeverity(severity string) []models.MonitoringEvent {
	var out []models.MonitoringEvent
	for _, m := range f.monitoring {
		if m.Severity == severity {
			out = append(out, m)
		}
	}
	return out
}

// fakeConfirmer mimics the transactional confirm-payment operation
// against the fake repo's orders.
type fakeConfirmer struct {
	repo  *fakeRepo
	err   error
	calls int
}

func (c *fakeConfirmer) ConfirmPayment(ctx context.Context, orderID uint, gatewayPaymentID string) error {
	c.calls++
	if c.err != nil {
		return c.err
	}
	order, ok := c.repo.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
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

// fakeMailer records sends and can be forced to fail.
type fakeMailer struct {
	err  error
	sent []string
}

func (m *fakeMailer) Send(to string, subject string, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

var errMailDown = errors.New("smtp connection refused")
