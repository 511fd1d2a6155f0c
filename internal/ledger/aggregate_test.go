package ledger

import (
	"testing"

	"finance_tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryTotalsEmptyLedger(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")

	totals, err := SummaryTotals(db, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, totals.TotalTransactions)
	requireDecimalEqual(t, "0", totals.TotalIncome)
	requireDecimalEqual(t, "0", totals.TotalExpense)
	requireDecimalEqual(t, "0", totals.Balance)
}

func TestSummaryTotals(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	other := seedUser(t, db, "other@example.com")
	salary := seedCategory(t, db, user.ID, "Salary", domain.TypeIncome)
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)

	seedTransaction(t, db, user.ID, &salary.ID, "1000", domain.TypeIncome, date(2024, 1, 1))
	seedTransaction(t, db, user.ID, &groceries.ID, "200", domain.TypeExpense, date(2024, 1, 5))
	seedTransaction(t, db, user.ID, &groceries.ID, "300.50", domain.TypeExpense, date(2024, 1, 10))
	// Another user's ledger never bleeds into the totals.
	seedTransaction(t, db, other.ID, nil, "9999", domain.TypeExpense, date(2024, 1, 10))

	totals, err := SummaryTotals(db, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, totals.TotalTransactions)
	requireDecimalEqual(t, "1000", totals.TotalIncome)
	requireDecimalEqual(t, "500.50", totals.TotalExpense)
	requireDecimalEqual(t, "499.50", totals.Balance)
}

func TestMonthlyTrend(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	salary := seedCategory(t, db, user.ID, "Salary", domain.TypeIncome)
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)

	seedTransaction(t, db, user.ID, &salary.ID, "1000", domain.TypeIncome, date(2024, 1, 15))
	seedTransaction(t, db, user.ID, &groceries.ID, "400", domain.TypeExpense, date(2024, 1, 20))
	// February has no activity and must be omitted, not zero-filled.
	seedTransaction(t, db, user.ID, &groceries.ID, "250", domain.TypeExpense, date(2024, 3, 2))
	// Older than the six-month window.
	seedTransaction(t, db, user.ID, &groceries.ID, "999", domain.TypeExpense, date(2023, 9, 30))

	buckets, err := MonthlyTrend(db, user.ID, 6, date(2024, 3, 15))
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2024-01", buckets[0].Month)
	requireDecimalEqual(t, "1000", buckets[0].Income)
	requireDecimalEqual(t, "400", buckets[0].Expense)
	requireDecimalEqual(t, "600", buckets[0].Balance)

	assert.Equal(t, "2024-03", buckets[1].Month)
	requireDecimalEqual(t, "0", buckets[1].Income)
	requireDecimalEqual(t, "250", buckets[1].Expense)
	requireDecimalEqual(t, "-250", buckets[1].Balance)
}

func TestMonthlyTrendWindowBoundary(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)

	// First day of the oldest month in a six-month window ending March 2024.
	seedTransaction(t, db, user.ID, &groceries.ID, "10", domain.TypeExpense, date(2023, 10, 1))
	// One day earlier falls outside.
	seedTransaction(t, db, user.ID, &groceries.ID, "20", domain.TypeExpense, date(2023, 9, 30))

	buckets, err := MonthlyTrend(db, user.ID, 6, date(2024, 3, 15))
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "2023-10", buckets[0].Month)
	requireDecimalEqual(t, "10", buckets[0].Expense)
}

func TestCategoryBreakdown(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	transport := seedCategory(t, db, user.ID, "Transport", domain.TypeExpense)
	seedCategory(t, db, user.ID, "Dining Out", domain.TypeExpense) // no transactions

	seedTransaction(t, db, user.ID, &groceries.ID, "200", domain.TypeExpense, date(2024, 1, 5))
	seedTransaction(t, db, user.ID, &groceries.ID, "100", domain.TypeExpense, date(2024, 1, 8))
	seedTransaction(t, db, user.ID, &transport.ID, "50", domain.TypeExpense, date(2024, 1, 9))

	rows, err := CategoryBreakdown(db, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2, "categories without spending are excluded")

	assert.Equal(t, "Groceries", rows[0].Name)
	requireDecimalEqual(t, "300", rows[0].TotalAmount)
	assert.EqualValues(t, 2, rows[0].TransactionCount)
	assert.Equal(t, "Transport", rows[1].Name)

	top, err := CategoryBreakdown(db, user.ID, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Groceries", top[0].Name)
}

func TestCategoryStatsIncludesUnusedCategories(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	seedCategory(t, db, user.ID, "Dining Out", domain.TypeExpense)
	seedTransaction(t, db, user.ID, &groceries.ID, "75", domain.TypeExpense, date(2024, 1, 5))

	rows, err := CategoryStats(db, user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := make(map[string]CategoryTotal, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}
	requireDecimalEqual(t, "75", byName["Groceries"].TotalAmount)
	assert.EqualValues(t, 1, byName["Groceries"].TransactionCount)
	requireDecimalEqual(t, "0", byName["Dining Out"].TotalAmount)
	assert.EqualValues(t, 0, byName["Dining Out"].TransactionCount)
}

func TestRecentTransactions(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)

	seedTransaction(t, db, user.ID, &groceries.ID, "10", domain.TypeExpense, date(2024, 1, 1))
	seedTransaction(t, db, user.ID, &groceries.ID, "20", domain.TypeExpense, date(2024, 1, 3))
	// Uncategorized rows still show up, with null category fields.
	seedTransaction(t, db, user.ID, nil, "30", domain.TypeExpense, date(2024, 1, 5))

	recent, err := RecentTransactions(db, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	requireDecimalEqual(t, "30", recent[0].Amount)
	assert.Nil(t, recent[0].CategoryName)
	requireDecimalEqual(t, "20", recent[1].Amount)
	require.NotNil(t, recent[1].CategoryName)
	assert.Equal(t, "Groceries", *recent[1].CategoryName)
}

func TestDeleteCategoryGuard(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	transaction := seedTransaction(t, db, user.ID, &groceries.ID, "10", domain.TypeExpense, date(2024, 1, 1))

	err := DeleteCategory(db, user.ID, groceries.ID)
	assert.ErrorIs(t, err, ErrTransactionsStillReference)

	// Once the last referencing transaction is gone the delete succeeds.
	require.NoError(t, db.Delete(&transaction).Error)
	require.NoError(t, DeleteCategory(db, user.ID, groceries.ID))

	assert.ErrorIs(t, DeleteCategory(db, user.ID, groceries.ID), ErrCategoryNotFound)
}

func TestDeleteCategoryBudgetGuard(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	budget := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	// A category carrying a budget cannot be deleted out from under it.
	err := DeleteCategory(db, user.ID, groceries.ID)
	assert.ErrorIs(t, err, ErrBudgetsStillReference)

	require.NoError(t, db.Delete(&budget).Error)
	require.NoError(t, DeleteCategory(db, user.ID, groceries.ID))
}

func TestDeleteCategoryForeignOwner(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	other := seedUser(t, db, "other@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)

	assert.ErrorIs(t, DeleteCategory(db, other.ID, groceries.ID), ErrCategoryNotFound)
}
