package payments

import (
	"github.com/FelixKnapp/ShopFox/app/models"
	"github.com/FelixKnapp/ShopFox/internal/pkg/mail"
	"github.com/gofiber/fiber/v2/log"
)

// Dispatcher runs best-effort post-confirmation side effects. By the time
// it is invoked the payment transition is already durable, so nothing in
// here may propagate a failure back to the caller. There is no automatic
// retry; an operator or a reminder flow resends.
type Dispatcher struct {
	repo   Repository
	mailer mail.Mailer
}

// NewDispatcher creates a side-effect dispatcher.
func NewDispatcher(repo Repository, mailer mail.Mailer) *Dispatcher {
	return &Dispatcher{repo: repo, mailer: mailer}
}

// DispatchOrderConfirmation sends the confirmation email for a freshly
// paid order and writes one EmailLog row per attempt.
func (d *Dispatcher) DispatchOrderConfirmation(orderID uint) {
	order, err := d.repo.GetOrderForNotification(orderID)
	if err != nil {
		log.Errorf("[Dispatcher] order %d lookup failed: %v", orderID, err)
		d.logAttempt(orderID, "", models.EmailLogStatusFailed, err.Error())
		return
	}

	recipient := order.Customer.Email
	if recipient == "" {
		log.Warnf("[Dispatcher] order %d has no customer email", orderID)
		d.logAttempt(orderID, "", models.EmailLogStatusFailed, "no recipient email")
		return
	}

	subject := mail.OrderConfirmationSubject(order)
	body := mail.OrderConfirmationBody(order)
	if err := d.mailer.Send(recipient, subject, body); err != nil {
		log.Errorf("[Dispatcher] confirmation email for order %d failed: %v", orderID, err)
		d.logAttempt(orderID, recipient, models.EmailLogStatusFailed, err.Error())
		return
	}

	d.logAttempt(orderID, recipient, models.EmailLogStatusSent, "")
}

func (d *Dispatcher) logAttempt(orderID uint, recipient, status, errMsg string) {
	entry := &models.EmailLog{
		OrderID:   orderID,
		Kind:      "order_confirmation",
		Recipient: recipient,
		Status:    status,
		Error:     errMsg,
	}
	if err := d.repo.CreateEmailLog(entry); err != nil {
		log.Errorf("[Dispatcher] email log write for order %d failed: %v", orderID, err)
	}
}
