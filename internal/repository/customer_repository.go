package repository

import (
	"context"

	"ampnm-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uint) (*model.Customer, error)
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
	SaveProfile(ctx context.Context, customerID uint, profile *model.Profile, name string) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Preload("Profile").First(&customer, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error; err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

// SaveProfile upserts the profile row and keeps the customer's display name in sync.
func (r *customerRepository) SaveProfile(ctx context.Context, customerID uint, profile *model.Profile, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&model.Customer{}, customerID).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&model.Customer{}).Where("id = ?", customerID).Update("name", name).Error; err != nil {
			return err
		}
		profile.CustomerID = customerID
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "address", "phone", "avatar_url", "updated_at"}),
		}).Create(profile).Error
	})
}
