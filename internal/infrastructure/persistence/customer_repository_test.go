package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCustomerRepository creates a GormCustomerRepository with a mocked SQL connection
func newMockCustomerRepository(t *testing.T) (*GormCustomerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCustomerRepository(gormDB), mock, mockDB
}

func customerRows(id, userID uuid.UUID, name string, balance, hourlyDebit decimal.Decimal) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "balance", "hourly_debit_amount", "version", "created_at", "updated_at"}).
		AddRow(id, userID, name, balance, hourlyDebit, 1, time.Now(), time.Now())
}

func TestNewGormCustomerRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormCustomerRepository_FindByID(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		userID := uuid.New()

		rows := customerRows(customerID, userID, "Acme Corp", decimal.NewFromInt(100), decimal.NewFromInt(5))

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByID(context.Background(), customerID)

		assert.NoError(t, err)
		assert.NotNil(t, customer)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, "Acme Corp", customer.Name)
		assert.True(t, customer.Balance.Equal(decimal.NewFromInt(100)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		customer, err := repo.FindByID(context.Background(), customerID)

		assert.Error(t, err)
		assert.Nil(t, customer)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindByIDForUser(t *testing.T) {
	t.Run("finds customer owned by user", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		userID := uuid.New()

		rows := customerRows(customerID, userID, "Acme Corp", decimal.NewFromInt(50), decimal.NewFromInt(2))

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE user_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(userID, customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByIDForUser(context.Background(), userID, customerID)

		assert.NoError(t, err)
		assert.NotNil(t, customer)
		assert.Equal(t, userID, customer.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for another owner's customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		userID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE user_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(userID, customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		customer, err := repo.FindByIDForUser(context.Background(), userID, customerID)

		assert.Error(t, err)
		assert.Nil(t, customer)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindAllForUser(t *testing.T) {
	t.Run("lists customers for owner newest first", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		first := uuid.New()
		second := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "user_id", "name", "balance", "hourly_debit_amount", "version", "created_at", "updated_at"}).
			AddRow(first, userID, "Newer", decimal.NewFromInt(10), decimal.NewFromInt(1), 1, time.Now(), time.Now()).
			AddRow(second, userID, "Older", decimal.NewFromInt(20), decimal.NewFromInt(2), 1, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour))

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE user_id = \$1 ORDER BY created_at DESC`).
			WithArgs(userID).
			WillReturnRows(rows)

		customers, err := repo.FindAllForUser(context.Background(), userID, shared.DefaultFilter())

		assert.NoError(t, err)
		assert.Len(t, customers, 2)
		assert.Equal(t, "Newer", customers[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown sort columns", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		userID := uuid.New()

		// The injected column falls back to created_at
		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE user_id = \$1 ORDER BY created_at DESC`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindAllForUser(context.Background(), userID, shared.Filter{
			OrderBy:  "balance; DROP TABLE customers",
			OrderDir: "desc",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindEligibleForDebit(t *testing.T) {
	t.Run("returns positive-balance customers oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "user_id", "name", "balance", "hourly_debit_amount", "version", "created_at", "updated_at"}).
			AddRow(uuid.New(), userID, "First", decimal.NewFromFloat(0.01), decimal.NewFromInt(1), 1, time.Now().Add(-2*time.Hour), time.Now()).
			AddRow(uuid.New(), userID, "Second", decimal.NewFromInt(100), decimal.NewFromInt(5), 1, time.Now(), time.Now())

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE balance > \$1 ORDER BY created_at ASC`).
			WillReturnRows(rows)

		customers, err := repo.FindEligibleForDebit(context.Background())

		assert.NoError(t, err)
		assert.Len(t, customers, 2)
		assert.Equal(t, "First", customers[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when nobody is eligible", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE balance > \$1 ORDER BY created_at ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		customers, err := repo.FindEligibleForDebit(context.Background())

		assert.NoError(t, err)
		assert.Empty(t, customers)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_SaveWithLock(t *testing.T) {
	newCustomer := func(t *testing.T) *billing.Customer {
		t.Helper()
		customer, err := billing.NewCustomer(uuid.New(), "Acme Corp", decimal.NewFromInt(100), decimal.NewFromInt(5))
		require.NoError(t, err)
		return customer
	}

	t.Run("updates row when version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customer := newCustomer(t)
		customer.IncrementVersion()

		mock.ExpectExec(`UPDATE "customers" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), customer)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when version changed concurrently", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customer := newCustomer(t)
		customer.IncrementVersion()

		mock.ExpectExec(`UPDATE "customers" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), customer)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Delete(t *testing.T) {
	t.Run("deletes existing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		mock.ExpectExec(`DELETE FROM "customers" WHERE id = \$1`).
			WithArgs(customerID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), customerID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		mock.ExpectExec(`DELETE FROM "customers" WHERE id = \$1`).
			WithArgs(customerID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), customerID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_CountForUser(t *testing.T) {
	t.Run("counts customers for owner", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		userID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountForUser(context.Background(), userID)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
