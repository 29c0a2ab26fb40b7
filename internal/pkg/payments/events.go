package payments

import (
	"encoding/json"
	"errors"
	"strings"
)

// EventKind is the closed set of gateway event variants this subsystem
// distinguishes. Everything that is neither a capture nor a failure is
// acknowledged without touching the order.
type EventKind int

const (
	KindOther EventKind = iota
	KindPaymentCaptured
	KindPaymentFailed
)

const (
	EventNamePaymentCaptured = "payment.captured"
	EventNamePaymentFailed   = "payment.failed"
)

var ErrInvalidPayload = errors.New("invalid gateway payload")

// GatewayEvent is the narrowed, validated form of a webhook payload.
type GatewayEvent struct {
	Kind      EventKind
	Name      string
	EventID   string
	PaymentID string
	OrderRef  string
}

type gatewayPayload struct {
	Event   string `json:"event"`
	EventID string `json:"event_id"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseGatewayEvent validates and narrows a raw webhook body into a
// GatewayEvent before any business logic sees it.
func ParseGatewayEvent(raw []byte) (*GatewayEvent, error) {
	var body gatewayPayload
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, ErrInvalidPayload
	}

	name := strings.TrimSpace(body.Event)
	ev := &GatewayEvent{
		Name:      name,
		EventID:   strings.TrimSpace(body.EventID),
		PaymentID: strings.TrimSpace(body.Payload.Payment.Entity.ID),
		OrderRef:  strings.TrimSpace(body.Payload.Payment.Entity.OrderID),
	}

	switch name {
	case EventNamePaymentCaptured:
		ev.Kind = KindPaymentCaptured
	case EventNamePaymentFailed:
		ev.Kind = KindPaymentFailed
	default:
		ev.Kind = KindOther
	}

	return ev, nil
}

// PeekEventID extracts only the gateway event id from a raw body, used for
// deduplication before full parsing. Returns empty on unparseable JSON.
func PeekEventID(raw []byte) (eventID string, eventType string) {
	var head struct {
		Event   string `json:"event"`
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", ""
	}
	return strings.TrimSpace(head.EventID), strings.TrimSpace(head.Event)
}
