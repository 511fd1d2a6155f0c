package ledger

import (
	"testing"
	"time"

	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory store with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Transaction{},
		&domain.Budget{},
	))
	return db
}

// date builds a UTC calendar date
func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// money parses a decimal literal, failing the test on bad input
func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func seedUser(t *testing.T, db *gorm.DB, email string) domain.User {
	t.Helper()
	user := domain.User{Email: email, Password: "hash", FullName: "Test User"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, userID uint, name, categoryType string) domain.Category {
	t.Helper()
	category := domain.Category{UserID: userID, Name: name, Type: categoryType, Color: "#336699"}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func seedTransaction(t *testing.T, db *gorm.DB, userID uint, categoryID *uint, amount, transactionType string, day time.Time) domain.Transaction {
	t.Helper()
	transaction := domain.Transaction{
		UserID:          userID,
		CategoryID:      categoryID,
		Amount:          money(t, amount),
		Type:            transactionType,
		TransactionDate: day,
	}
	require.NoError(t, db.Create(&transaction).Error)
	return transaction
}

func seedBudget(t *testing.T, db *gorm.DB, userID, categoryID uint, amount, period string, start, end time.Time) domain.Budget {
	t.Helper()
	budget := domain.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     money(t, amount),
		Period:     period,
		StartDate:  start,
		EndDate:    end,
	}
	require.NoError(t, db.Create(&budget).Error)
	return budget
}

// requireDecimalEqual compares decimals by value, not representation
func requireDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(decimal.RequireFromString(want)),
		"expected %s, got %s", want, got.String())
}
