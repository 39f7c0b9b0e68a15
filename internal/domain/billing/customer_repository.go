package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDForUser finds a customer by ID owned by the given user
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Customer, error)

	// FindAllForUser finds all customers owned by the given user
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Customer, error)

	// FindEligibleForDebit finds every customer with balance > 0, across all
	// owners, ordered by creation time. This is the debit run snapshot.
	FindEligibleForDebit(ctx context.Context) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// SaveWithLock saves a customer with optimistic locking (version check)
	SaveWithLock(ctx context.Context, customer *Customer) error

	// Delete deletes a customer and, via the schema, its debit logs
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForUser counts customers owned by the given user
	CountForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// DebitLogFilter contains filter options for listing debit log entries
type DebitLogFilter struct {
	Status *DebitStatus
	Since  *time.Time
	Limit  int
}

// DebitLogRepository defines the interface for debit log persistence.
// Entries are append-only.
type DebitLogRepository interface {
	// Create appends a new log entry
	Create(ctx context.Context, entry *DebitLogEntry) error

	// FindByCustomerID finds entries for one customer, newest first
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter DebitLogFilter) ([]DebitLogEntry, error)

	// FindForUser finds entries across all customers owned by the given
	// user, newest first
	FindForUser(ctx context.Context, userID uuid.UUID, filter DebitLogFilter) ([]DebitLogEntry, error)

	// Summarize aggregates entries created at or after the given time
	Summarize(ctx context.Context, since time.Time) (*LogSummary, error)
}
