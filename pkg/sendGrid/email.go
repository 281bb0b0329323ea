package sendGrid

import (
	"context"
	"fmt"

	"github.com/farmhub-ng/farm-marketplace/internal/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService interface {
	SendOrderConfirmation(ctx context.Context, toEmail string, order *models.Order) error
}

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) EmailService {
	return &emailService{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

// SendOrderConfirmation implements EmailService.
func (e *emailService) SendOrderConfirmation(ctx context.Context, toEmail string, order *models.Order) error {

	from := mail.NewEmail(e.fromName, e.fromEmail)
	to := mail.NewEmail(order.BuyerName, toEmail)

	message := mail.NewV3Mail()
	message.SetFrom(from)

	personalization := mail.NewPersonalization()
	personalization.AddTos(to)
	personalization.Subject = fmt.Sprintf("Order %s confirmed", order.ID)

	message.AddPersonalizations(personalization)

	plain := fmt.Sprintf("Your order of %d item(s) totalling ₦%s has been received and is now pending.",
		len(order.Lines), order.TotalPrice.StringFixed(2))
	html := fmt.Sprintf("<p>Your order of <strong>%d</strong> item(s) totalling <strong>₦%s</strong> has been received and is now pending.</p>",
		len(order.Lines), order.TotalPrice.StringFixed(2))

	message.AddContent(mail.NewContent("text/plain", plain))
	message.AddContent(mail.NewContent("text/html", html))

	response, err := e.client.SendWithContext(ctx, message)

	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}
