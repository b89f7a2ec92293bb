package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"library-rental-backend/internal/config"
	"library-rental-backend/internal/logger"
)

const sendGridMailPath = "/v3/mail/send"

// SendGridSink emails notifications. The destination is a recipient address.
type SendGridSink struct {
	apiKey    string
	host      string
	fromEmail string
	fromName  string
	subject   string
	policy    *bluemonday.Policy
}

func NewSendGridSink(cfg config.SendGridConfig) *SendGridSink {
	return &SendGridSink{
		apiKey:    cfg.APIKey,
		host:      strings.TrimRight(cfg.APIHost, "/"),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		subject:   cfg.Subject,
		policy:    bluemonday.StrictPolicy(),
	}
}

// htmlBody renders message as a paragraph. Book titles and names are user-entered, so the
// message is stripped of markup before escaping.
func (s *SendGridSink) htmlBody(message string) string {
	clean := html.EscapeString(html.UnescapeString(s.policy.Sanitize(message)))
	return "<html><body><p>" + clean + "</p></body></html>"
}

func (s *SendGridSink) Send(ctx context.Context, destination, message string) error {
	logger.ExternalServiceCall("sendgrid", "mail.send", "to", destination)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", destination)
	msg := mail.NewSingleEmail(from, s.subject, to, message, s.htmlBody(message))

	req := sendgrid.GetRequest(s.apiKey, sendGridMailPath, s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(msg)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
		logger.ExternalServiceResult("sendgrid", "mail.send", err)
		return err
	}
	if resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
		logger.ExternalServiceResult("sendgrid", "mail.send", err)
		return err
	}

	logger.ExternalServiceResult("sendgrid", "mail.send", nil, "to", destination)
	return nil
}
