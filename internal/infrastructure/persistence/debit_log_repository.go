package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDebitLogRepository implements billing.DebitLogRepository using GORM.
// Log entries are append-only; there are no update or delete paths here.
type GormDebitLogRepository struct {
	db *gorm.DB
}

// NewGormDebitLogRepository creates a new GormDebitLogRepository
func NewGormDebitLogRepository(db *gorm.DB) *GormDebitLogRepository {
	return &GormDebitLogRepository{db: db}
}

// Create appends a new log entry
func (r *GormDebitLogRepository) Create(ctx context.Context, entry *billing.DebitLogEntry) error {
	model := models.DebitLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByCustomerID finds entries for one customer, newest first
func (r *GormDebitLogRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter billing.DebitLogFilter) ([]billing.DebitLogEntry, error) {
	var logModels []models.DebitLogModel
	query := r.db.WithContext(ctx).Model(&models.DebitLogModel{}).
		Where("customer_id = ?", customerID)

	query = r.applyFilter(query, filter)

	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(logModels), nil
}

// FindForUser finds entries across all customers owned by the given user,
// newest first. Ownership is resolved through the customers table.
func (r *GormDebitLogRepository) FindForUser(ctx context.Context, userID uuid.UUID, filter billing.DebitLogFilter) ([]billing.DebitLogEntry, error) {
	var logModels []models.DebitLogModel
	query := r.db.WithContext(ctx).Model(&models.DebitLogModel{}).
		Joins("JOIN customers ON customers.id = debit_logs.customer_id").
		Where("customers.user_id = ?", userID)

	query = r.applyFilter(query, filter)

	if err := query.Find(&logModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(logModels), nil
}

// Summarize aggregates entries created at or after the given time
func (r *GormDebitLogRepository) Summarize(ctx context.Context, since time.Time) (*billing.LogSummary, error) {
	var result struct {
		Total         int64
		Successful    int64
		Failed        int64
		LastProcessed *time.Time
	}

	if err := r.db.WithContext(ctx).
		Model(&models.DebitLogModel{}).
		Select(
			"COUNT(*) as total, "+
				"COUNT(*) FILTER (WHERE status = ?) as successful, "+
				"COUNT(*) FILTER (WHERE status = ?) as failed, "+
				"MAX(created_at) as last_processed",
			billing.DebitStatusSuccess, billing.DebitStatusFailed,
		).
		Where("created_at >= ?", since).
		Scan(&result).Error; err != nil {
		return nil, err
	}

	return &billing.LogSummary{
		Total:         result.Total,
		Successful:    result.Successful,
		Failed:        result.Failed,
		LastProcessed: result.LastProcessed,
	}, nil
}

// applyFilter applies status, window and limit options, newest entries first
func (r *GormDebitLogRepository) applyFilter(query *gorm.DB, filter billing.DebitLogFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("debit_logs.status = ?", *filter.Status)
	}
	if filter.Since != nil {
		query = query.Where("debit_logs.created_at >= ?", *filter.Since)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return query.Order("debit_logs.created_at DESC")
}

func toDomainEntries(logModels []models.DebitLogModel) []billing.DebitLogEntry {
	entries := make([]billing.DebitLogEntry, len(logModels))
	for i, model := range logModels {
		entries[i] = *model.ToDomain()
	}
	return entries
}

// Ensure GormDebitLogRepository implements DebitLogRepository
var _ billing.DebitLogRepository = (*GormDebitLogRepository)(nil)
