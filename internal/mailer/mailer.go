package mailer

import "context"

// Mailer delivers portal emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	// SendMagicLink emails a portal sign-in link. The link embeds a
	// single-use token and expires in minutes, so delivery should not be
	// retried beyond the provider's own retry policy.
	SendMagicLink(ctx context.Context, toEmail, toName, magicLink string) error
	// SendFirstLoginAlert notifies a staff member that a customer signed in
	// to the portal for the first time.
	SendFirstLoginAlert(ctx context.Context, toEmail, toName, customerName, businessName string) error
}
