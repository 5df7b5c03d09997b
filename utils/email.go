package utils

import (
	"context"
	"fmt"
	"go-storefront/models"
	"go-storefront/pricing"
	"html"
	"strings"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EmailClient delivers a single html message
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, htmlBody string) error
}

// SendGridClient implements EmailClient over the SendGrid v3 API
type SendGridClient struct {
	apiKey string
}

func NewSendGridClient(apiKey string) *SendGridClient {
	return &SendGridClient{apiKey: apiKey}
}

func (c *SendGridClient) Send(ctx context.Context, from, to, subject, htmlBody string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail("Storefront", from),
		subject,
		mail.NewEmail("", to),
		htmlBody,
		htmlBody,
	)

	response, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}
	return nil
}

// PostmarkClient implements EmailClient over Postmark
type PostmarkClient struct {
	client *postmark.Client
}

func NewPostmarkClient(serverToken string) *PostmarkClient {
	return &PostmarkClient{client: postmark.NewClient(serverToken, "")}
}

func (c *PostmarkClient) Send(_ context.Context, from, to, subject, htmlBody string) error {
	_, err := c.client.SendEmail(postmark.Email{
		From:     from,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: htmlBody,
	})
	if err != nil {
		return fmt.Errorf("postmark send error: %w", err)
	}
	return nil
}

// NewEmailClient picks the mail provider named by provider
func NewEmailClient(provider, sendGridKey, postmarkToken string) (EmailClient, error) {
	switch provider {
	case "sendgrid":
		return NewSendGridClient(sendGridKey), nil
	case "postmark":
		if postmarkToken == "" {
			return nil, WrapConfigError("POSTMARK_API_TOKEN", ErrMissingValue)
		}
		return NewPostmarkClient(postmarkToken), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", provider)
	}
}

// EmailService sends the storefront's transactional emails
type EmailService struct {
	client     EmailClient
	sender     string
	orderInbox string
	baseURL    string
	logger     *zap.Logger
}

func NewEmailService(client EmailClient, sender, orderInbox, baseURL string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:     client,
		sender:     sender,
		orderInbox: orderInbox,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	if err := es.client.Send(ctx, es.sender, toEmail, subject, htmlContent); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	es.logger.Info("email sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s", es.baseURL, token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		link,
	)
	return es.SendEmail(ctx, toEmail, "Verify Your Email", htmlContent)
}

// SendOrderEmail sends the order summary to the customer and, when
// configured, a copy to the shop's order inbox
func (es *EmailService) SendOrderEmail(ctx context.Context, order models.Order) error {
	subject := fmt.Sprintf("Order #%d (%s)", order.OrderCount, order.Number)
	body := RenderOrderEmail(order)

	if err := es.SendEmail(ctx, order.Email, subject, body); err != nil {
		return err
	}
	if es.orderInbox != "" {
		if err := es.SendEmail(ctx, es.orderInbox, "New "+subject, body); err != nil {
			return err
		}
	}
	return nil
}

// RenderOrderEmail renders the order summary as html
func RenderOrderEmail(order models.Order) string {
	var b strings.Builder
	esc := html.EscapeString

	fmt.Fprintf(&b, "<strong>Dear %s,</strong><br><br>", esc(order.Shipping.FullName))
	fmt.Fprintf(&b, "Thank you for your purchase! Your order <strong>%s</strong> has been received.<br><br>", esc(order.Number))
	price := func(s string) string {
		return pricing.FormatPrice(decimal.RequireFromString(orZero(s)), order.Currency)
	}

	b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			esc(item.Name), item.Quantity, price(item.LineTotal))
	}
	b.WriteString("</table><br>")

	fmt.Fprintf(&b, "Subtotal: %s<br>", price(order.Subtotal))
	fmt.Fprintf(&b, "Shipping: %s<br>", pricing.FormatShippingFee(decimal.RequireFromString(orZero(order.ShippingFee)), order.Currency))
	fmt.Fprintf(&b, "Total Amount: <strong>%s</strong><br>", price(order.TotalAmount))
	fmt.Fprintf(&b, "Payment Method: <strong>%s</strong><br><br>", esc(models.PaymentLabel(order.PaymentMethod)))

	info := order.Shipping
	state := info.State
	if state == pricing.InternationalRegion {
		state = info.OutsideMalaysiaState
	}
	lines := []string{info.AddressLine1, info.AddressLine2, info.Postcode + " " + info.City, state, info.Country}
	b.WriteString("Ship to:<br>")
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			fmt.Fprintf(&b, "%s<br>", esc(line))
		}
	}
	fmt.Fprintf(&b, "Phone: %s<br>", esc(info.PhoneNo))
	if info.NotesToSeller != "" {
		fmt.Fprintf(&b, "Notes: %s<br>", esc(info.NotesToSeller))
	}
	b.WriteString("<br>Thank you for shopping with us!")
	return b.String()
}

func orZero(amount string) string {
	if _, err := decimal.NewFromString(amount); err != nil {
		return "0"
	}
	return amount
}
