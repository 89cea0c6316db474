package mailer

import (
	"context"

	"github.com/rs/zerolog/log"
)

// DevMailer logs emails instead of sending them. Used when no provider is
// configured.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendMagicLink(ctx context.Context, toEmail, toName, magicLink string) error {
	log.Info().
		Str("to", toEmail).
		Str("magic_link", magicLink).
		Msg("[dev mail] magic link email")
	return nil
}

func (d *DevMailer) SendFirstLoginAlert(ctx context.Context, toEmail, toName, customerName, businessName string) error {
	log.Info().
		Str("to", toEmail).
		Str("customer", customerName).
		Str("business", businessName).
		Msg("[dev mail] first login alert email")
	return nil
}
