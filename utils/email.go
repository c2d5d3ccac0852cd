package utils

import (
	"fmt"
	"html"
	"strings"

	"storefront/models"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends a single email
type Mailer interface {
	SendEmail(toEmail, subject, htmlContent string) error
}

// PostmarkMailer sends email through Postmark
type PostmarkMailer struct {
	client *postmark.Client
	sender string
}

// NewPostmarkMailer creates a PostmarkMailer
func NewPostmarkMailer(apiToken, sender string) *PostmarkMailer {
	return &PostmarkMailer{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient
func (m *PostmarkMailer) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("postmark: failed to send email: %w", err)
	}
	return nil
}

// SendGridMailer sends email through SendGrid
type SendGridMailer struct {
	client *sendgrid.Client
	sender string
}

// NewSendGridMailer creates a SendGridMailer
func NewSendGridMailer(apiKey, sender string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient
func (m *SendGridMailer) SendEmail(toEmail, subject, htmlContent string) error {
	from := mail.NewEmail("VibeFashion", m.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	response, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send email: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: send failed: status=%d body=%s", response.StatusCode, response.Body)
	}
	return nil
}

// NewMailer picks Postmark when a Postmark token is set, else SendGrid when
// an API key is set. It returns nil when neither is configured.
func NewMailer(postmarkToken, sendgridKey, sender string) Mailer {
	switch {
	case postmarkToken != "":
		return NewPostmarkMailer(postmarkToken, sender)
	case sendgridKey != "":
		return NewSendGridMailer(sendgridKey, sender)
	}
	return nil
}

// OrderConfirmationEmail renders the subject and HTML body sent after checkout
func OrderConfirmationEmail(name string, order *models.Order) (string, string) {
	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "<li>%s &times; %d @ %.2f</li>", html.EscapeString(item.ProductID), item.Qty, item.Price)
	}

	subject := "Order Confirmation"
	body := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed.<br><ul>%s</ul>Total Amount: <strong>%.2f</strong><br>Payment Method: <strong>%s</strong>",
		html.EscapeString(name),
		order.ID.Hex(),
		lines.String(),
		order.Total,
		html.EscapeString(order.PaymentMethod),
	)
	return subject, body
}
