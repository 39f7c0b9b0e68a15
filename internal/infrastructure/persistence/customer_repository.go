package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCustomerRepository persists billing customers through GORM. All
// user-facing lookups are scoped by the owning user; only the debit
// run reads across owners.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Customer, error) {
	return r.findCustomer(ctx, "id = ?", id)
}

func (r *GormCustomerRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*billing.Customer, error) {
	return r.findCustomer(ctx, "user_id = ? AND id = ?", userID, id)
}

func (r *GormCustomerRepository) findCustomer(ctx context.Context, query string, args ...interface{}) (*billing.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormCustomerRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]billing.Customer, error) {
	var customerModels []models.CustomerModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("user_id = ?", userID),
		filter,
	)
	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return toDomainCustomers(customerModels), nil
}

// FindEligibleForDebit loads every customer with a positive balance
// across all owners, ordered by creation time. The result is the fixed
// snapshot a debit run iterates over.
func (r *GormCustomerRepository) FindEligibleForDebit(ctx context.Context) ([]billing.Customer, error) {
	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("balance > ?", decimal.Zero).
		Order("created_at ASC").
		Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return toDomainCustomers(customerModels), nil
}

func (r *GormCustomerRepository) Save(ctx context.Context, customer *billing.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error
}

// SaveWithLock updates the customer only if its stored version still
// matches the version the caller loaded. Zero rows updated means a
// concurrent writer got there first.
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *billing.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", customer.ID, customer.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The customer record has been modified by another transaction")
	}
	return nil
}

// Delete removes a customer; its debit logs go with it via ON DELETE
// CASCADE.
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCustomerRepository) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// applyFilter adds ordering and limit. Sort input goes through the
// whitelist before it reaches SQL.
func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	orderBy := ValidateSortField(filter.OrderBy, CustomerSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func toDomainCustomers(customerModels []models.CustomerModel) []billing.Customer {
	customers := make([]billing.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers
}

var _ billing.CustomerRepository = (*GormCustomerRepository)(nil)
