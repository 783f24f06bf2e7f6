package emails

import (
	"context"
	"fmt"
	"strings"

	"wedding-invitation/internal/application/notify"
	"wedding-invitation/internal/pkg/validation"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender sends account mails. Nil means mail is disabled.
type Sender interface {
	SendPasswordReset(ctx context.Context, toEmail, username, resetURL string) error
}

type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridClient sends mail through SendGrid. It also acts as a notify.Notifier
// that forwards RSVP/wish notifications to NotifyTo.
type SendGridClient struct {
	APIKey    string
	FromEmail string
	FromName  string
	NotifyTo  string

	client mailClient
}

// NewSendGridClient returns a client; an empty apiKey yields a client whose sends are no-ops.
func NewSendGridClient(apiKey, fromEmail, fromName, notifyTo string) *SendGridClient {
	c := &SendGridClient{APIKey: apiKey, FromEmail: fromEmail, FromName: fromName, NotifyTo: notifyTo}
	if apiKey != "" {
		c.client = sendgrid.NewSendClient(apiKey)
	}
	return c
}

// Configured reports whether notifications can be mailed.
func (c *SendGridClient) Configured() bool {
	return c != nil && c.client != nil && c.NotifyTo != ""
}

func (c *SendGridClient) send(ctx context.Context, toEmail, toName, subject, plain, html string) error {
	if c == nil || c.client == nil {
		return nil
	}
	from := mail.NewEmail(c.FromName, c.FromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)
	resp, err := c.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendPasswordReset mails the reset link to an admin.
func (c *SendGridClient) SendPasswordReset(ctx context.Context, toEmail, username, resetURL string) error {
	subject := "Reset your admin password"
	plain := fmt.Sprintf("Hi %s,\n\nOpen this link within one hour to choose a new password:\n%s\n\nIf you did not ask for this, ignore this email.", username, resetURL)
	return c.send(ctx, toEmail, username, subject, plain, EmailLayout(subject, passwordResetContent(username, resetURL)))
}

// Notify implements notify.Notifier.
func (c *SendGridClient) Notify(ctx context.Context, msg notify.Message) error {
	if !c.Configured() {
		return nil
	}
	html := EmailLayout(msg.Subject, "<p>"+strings.ReplaceAll(msg.Body, "\n", "<br>")+"</p>")
	return c.send(ctx, c.NotifyTo, "", msg.Subject, stripTags(msg.Body), html)
}

func passwordResetContent(username, resetURL string) string {
	return fmt.Sprintf(`
    <h1>Password reset</h1>
    <p>Hi %s,</p>
    <p>Someone asked to reset the password of your admin account. The link below is valid for one hour.</p>
    <center>
      <a href="%s" class="wedding-button">Choose a new password</a>
    </center>
    <p style="margin-top:20px;font-size:14px;color:#8A817C;">If you did not ask for this, you can safely ignore this email.</p>
`, validation.EscapeHTML(username), resetURL)
}

// stripTags drops the b/i markup used in notification bodies.
func stripTags(s string) string {
	r := strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "")
	return r.Replace(s)
}
