package mail

import (
	"fmt"

	"github.com/FelixKnapp/ShopFox/app/models"
)

// OrderConfirmationSubject builds the subject line for a paid order.
func OrderConfirmationSubject(order *models.Order) string {
	return fmt.Sprintf("Your order %s is confirmed", order.OrderNumber)
}

// OrderConfirmationBody renders the confirmation email body. Invoice PDF
// rendering is an external service; the mail links to the hosted document.
func OrderConfirmationBody(order *models.Order) string {
	body := fmt.Sprintf(
		"<h2>Thank you for your order!</h2>"+
			"<p>We received your payment for order <strong>%s</strong>.</p>"+
			"<ul>", order.OrderNumber)
	for _, item := range order.Items {
		body += fmt.Sprintf("<li>%d &times; %s</li>", item.Quantity, item.Product.Name)
	}
	body += fmt.Sprintf(
		"</ul><p>Total: %.2f %s</p>"+
			"<p>Your invoice is available in your account.</p>",
		float64(order.TotalCents)/100, order.Currency)
	return body
}
