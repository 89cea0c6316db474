package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

const sendTimeout = 10 * time.Second

// MailerSend delivers portal emails through the MailerSend API.
type MailerSend struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSend {
	return &MailerSend{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
}

func (m *MailerSend) SendMagicLink(ctx context.Context, toEmail, toName, magicLink string) error {
	subject := "Your portal sign-in link"
	html := fmt.Sprintf(`
		<h2>Sign in to your customer portal</h2>
		<p>Click the link below to sign in:</p>
		<p><a href="%s">Sign in</a></p>
		<p>This link can be used once and expires in 15 minutes.</p>
		<p>If you didn't request this, you can safely ignore this email.</p>
	`, magicLink)
	text := fmt.Sprintf("Sign in to your customer portal: %s\n\nThis link can be used once and expires in 15 minutes.", magicLink)

	return m.send(ctx, toEmail, toName, subject, text, html)
}

func (m *MailerSend) SendFirstLoginAlert(ctx context.Context, toEmail, toName, customerName, businessName string) error {
	subject := fmt.Sprintf("%s signed in to the portal", customerName)
	html := fmt.Sprintf(`
		<h2>Portal activity</h2>
		<p>%s signed in to the %s customer portal for the first time.</p>
	`, customerName, businessName)
	text := fmt.Sprintf("%s signed in to the %s customer portal for the first time.", customerName, businessName)

	return m.send(ctx, toEmail, toName, subject, text, html)
}

func (m *MailerSend) send(ctx context.Context, toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
