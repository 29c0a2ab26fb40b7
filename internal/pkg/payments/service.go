package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FelixKnapp/ShopFox/app/models"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentConfirmer is the atomic confirm-payment operation. It must be
// transactional and safe to call repeatedly for an already-paid order;
// it is the authoritative atomicity boundary, not the in-process checks
// in this package.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, orderID uint, gatewayPaymentID string) error
}

var errMissingOrderRef = errors.New("missing order reference")

// EventInput is the normalized input for webhook event persistence.
type EventInput struct {
	GatewayEventID string
	EventType      string
	PayloadJSON    string
}

// Service drives the order payment state machine. ProcessEvent is
// re-entrant: the sweeper redrives pending events through the same code
// path, and the paid short-circuit plus the confirmer's transactional
// guard make repeat invocations safe.
type Service struct {
	repo       Repository
	confirmer  PaymentConfirmer
	dispatcher *Dispatcher
	monitor    *Monitor
}

// NewService creates the webhook processing service from injected parts.
func NewService(repo Repository, confirmer PaymentConfirmer, dispatcher *Dispatcher, monitor *Monitor) *Service {
	return &Service{
		repo:       repo,
		confirmer:  confirmer,
		dispatcher: dispatcher,
		monitor:    monitor,
	}
}

// RecordEvent persists an inbound notification idempotently. The bool
// result is false for a redelivery, in which case the caller must
// short-circuit with an acknowledging response and do nothing else.
func (s *Service) RecordEvent(ctx context.Context, in EventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	eventID := strings.TrimSpace(in.GatewayEventID)
	if eventID == "" {
		// Gateway omitted the event id: fall back to a payload hash so a
		// byte-identical redelivery still deduplicates.
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		UUID:           uuid.NewString(),
		GatewayEventID: eventID,
		EventType:      strings.TrimSpace(in.EventType),
		PayloadJSON:    in.PayloadJSON,
		Status:         models.WebhookStatusPending,
	}
	return s.repo.CreateEventIfNotExists(event)
}

// ProcessEvent runs one processing attempt for a stored event. Any error
// has already been recorded on the event row (retry counter, last error,
// escalation) by the time it is returned; callers only log it.
func (s *Service) ProcessEvent(ctx context.Context, event *models.WebhookEvent) error {
	parsed, err := ParseGatewayEvent([]byte(event.PayloadJSON))
	if err != nil {
		return s.recordFailure(event, fmt.Errorf("unparseable payload: %w", err))
	}

	if parsed.OrderRef == "" {
		return s.recordFailure(event, errMissingOrderRef)
	}
	if event.GatewayOrderRef == "" {
		// Best-effort back-fill for the audit trail and the operator view.
		if err := s.repo.SetEventOrderRef(event.ID, parsed.OrderRef); err != nil {
			log.Warnf("[Payments] event %d: storing order ref failed: %v", event.ID, err)
		}
	}

	order, err := s.repo.GetOrderByGatewayRef(parsed.OrderRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Likely a race with order creation; retryable up to the ceiling.
			return s.recordFailure(event, fmt.Errorf("no order for gateway reference %s", parsed.OrderRef))
		}
		return s.recordFailure(event, err)
	}

	// Idempotency short-circuit: a paid order means this event (or an
	// equivalent one) already fully happened. Fast path only; the real
	// guard is the confirmer's transactional update.
	if order.IsPaid() {
		return s.markProcessed(event)
	}

	switch parsed.Kind {
	case KindPaymentFailed:
		if err := s.repo.MarkOrderPaymentFailed(order.ID); err != nil {
			return s.recordFailure(event, err)
		}
		return s.markProcessed(event)

	case KindPaymentCaptured:
		if err := s.confirmer.ConfirmPayment(ctx, order.ID, parsed.PaymentID); err != nil {
			return s.recordFailure(event, err)
		}
		// The confirmation is durable from here on. Mark processed first,
		// then dispatch: a notification failure must never un-confirm a
		// payment or leave the event eligible for redrive.
		if err := s.markProcessed(event); err != nil {
			return err
		}
		s.dispatcher.DispatchOrderConfirmation(order.ID)
		return nil

	default:
		// Refunds, disputes, informational events: acknowledged, not acted on.
		return s.markProcessed(event)
	}
}

func (s *Service) markProcessed(event *models.WebhookEvent) error {
	latency := time.Since(event.CreatedAt).Milliseconds()
	if err := s.repo.MarkEventProcessed(event.ID, latency); err != nil {
		return s.recordFailure(event, err)
	}
	return nil
}

// recordFailure does the retry bookkeeping for a failed attempt: counter,
// last error, pending-vs-failed status, and monitoring escalation. It
// returns the original cause so callers can log it.
func (s *Service) recordFailure(event *models.WebhookEvent, cause error) error {
	retryCount := event.RetryCount + 1
	final := retryCount >= models.WebhookRetryMaxAttempts

	if err := s.repo.MarkEventRetry(event.ID, retryCount, cause.Error(), final); err != nil {
		log.Errorf("[Payments] event %d: retry bookkeeping failed: %v", event.ID, err)
	}

	meta := map[string]interface{}{
		"webhook_event_id": event.ID,
		"gateway_event_id": event.GatewayEventID,
		"event_type":       event.EventType,
		"retry_count":      retryCount,
		"error":            cause.Error(),
	}
	switch {
	case final:
		s.monitor.Record("webhook_retry_exhausted", models.SeverityCritical,
			fmt.Sprintf("webhook event %s failed permanently after %d attempts", event.GatewayEventID, retryCount), meta)
		s.monitor.NotifyCriticalAlert(
			fmt.Sprintf("Webhook event %s exhausted its retry budget and requires operator intervention.", event.GatewayEventID), meta)
	case retryCount >= models.WebhookRetryWarnThreshold:
		s.monitor.Record("webhook_retry_threshold", models.SeverityWarning,
			fmt.Sprintf("webhook event %s failed %d times", event.GatewayEventID, retryCount), meta)
	}

	return cause
}
