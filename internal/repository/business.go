package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/portal-server-go/internal/model"
)

// BusinessRepository reads business, customer and staff records owned by the
// wider CRM.
type BusinessRepository interface {
	FindByID(ctx context.Context, id string) (*model.Business, error)
	FindCustomer(ctx context.Context, businessID, customerID string) (*model.Customer, error)
	ListActiveStaff(ctx context.Context, businessID string) ([]model.StaffMember, error)
}

type businessRepo struct {
	db *sqlx.DB
}

// NewBusinessRepository creates a new business repository
func NewBusinessRepository(db *sqlx.DB) BusinessRepository {
	return &businessRepo{db: db}
}

func (r *businessRepo) FindByID(ctx context.Context, id string) (*model.Business, error) {
	var business model.Business
	err := r.db.GetContext(ctx, &business, `
		SELECT * FROM businesses WHERE id = $1
	`, id)
	return HandleNotFound(&business, err)
}

func (r *businessRepo) FindCustomer(ctx context.Context, businessID, customerID string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.GetContext(ctx, &customer, `
		SELECT * FROM customers WHERE id = $1 AND business_id = $2
	`, customerID, businessID)
	return HandleNotFound(&customer, err)
}

func (r *businessRepo) ListActiveStaff(ctx context.Context, businessID string) ([]model.StaffMember, error) {
	var staff []model.StaffMember
	err := r.db.SelectContext(ctx, &staff, `
		SELECT * FROM staff_members
		WHERE business_id = $1 AND is_active = true
		ORDER BY created_at ASC
	`, businessID)
	if err != nil {
		return nil, err
	}
	return staff, nil
}
