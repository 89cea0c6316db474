package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fieldpilot/portal-server-go/internal/mailer"
	"github.com/fieldpilot/portal-server-go/internal/model"
	"github.com/fieldpilot/portal-server-go/internal/repository"
)

const notifyTimeout = 30 * time.Second

// Notifier tells business staff about a customer's first portal login.
// Dispatch is detached from the request path: it runs after the response
// and its failures only ever show up in the log.
type Notifier struct {
	businesses    repository.BusinessRepository
	notifications repository.NotificationRepository
	mailer        mailer.Mailer
}

func NewNotifier(
	businesses repository.BusinessRepository,
	notifications repository.NotificationRepository,
	sender mailer.Mailer,
) *Notifier {
	return &Notifier{
		businesses:    businesses,
		notifications: notifications,
		mailer:        sender,
	}
}

// NotifyFirstLogin fires the dispatch in the background with its own
// timeout, detached from the caller's request context.
func (n *Notifier) NotifyFirstLogin(businessID, customerID, accountEmail string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		n.Dispatch(ctx, businessID, customerID, accountEmail)
	}()
}

// Dispatch notifies every active staff member of the business, honoring
// per-staff preferences (missing preference rows mean both channels are
// enabled). One recipient's failure never aborts delivery to the others.
func (n *Notifier) Dispatch(ctx context.Context, businessID, customerID, accountEmail string) {
	business, err := n.businesses.FindByID(ctx, businessID)
	if err != nil || business == nil {
		log.Error().Err(err).Str("business_id", businessID).Msg("first-login notify: business lookup failed")
		return
	}

	customerName := accountEmail
	customer, err := n.businesses.FindCustomer(ctx, businessID, customerID)
	if err != nil {
		log.Error().Err(err).Msg("first-login notify: customer lookup failed")
	} else if customer != nil {
		customerName = customer.Name
	}

	staff, err := n.businesses.ListActiveStaff(ctx, businessID)
	if err != nil {
		log.Error().Err(err).Str("business_id", businessID).Msg("first-login notify: staff lookup failed")
		return
	}

	for _, member := range staff {
		inApp, byEmail := true, true
		pref, err := n.notifications.FindPreference(ctx, member.ID)
		if err != nil {
			log.Error().Err(err).Str("staff_id", member.ID).Msg("first-login notify: preference lookup failed")
		} else if pref != nil {
			inApp = pref.InAppPortalActivity
			byEmail = pref.EmailPortalFirstLogin
		}

		if inApp {
			err := n.notifications.Create(ctx, model.CreateNotificationParams{
				ID:         uuid.NewString(),
				StaffID:    member.ID,
				BusinessID: businessID,
				Type:       "portal_first_login",
				Title:      "New portal login",
				Body:       customerName + " signed in to the customer portal for the first time",
			})
			if err != nil {
				log.Error().Err(err).Str("staff_id", member.ID).Msg("first-login notify: in-app notification failed")
			}
		}

		if byEmail {
			if err := n.mailer.SendFirstLoginAlert(ctx, member.Email, member.Name, customerName, business.Name); err != nil {
				log.Error().Err(err).Str("staff_id", member.ID).Msg("first-login notify: email failed")
			}
		}
	}
}
