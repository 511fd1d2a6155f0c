package ledger

import (
	"errors"
	"testing"
	"time"

	"finance_tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBudgetPlacementRejectsForeignCategory(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	category := seedCategory(t, db, owner.ID, "Groceries", domain.TypeExpense)

	err := ValidateBudgetPlacement(db, other.ID, category.ID, date(2024, 1, 1), date(2024, 1, 31), 0)
	assert.ErrorIs(t, err, ErrCategoryNotOwned)
}

func TestValidateBudgetPlacementRejectsIncomeCategory(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	salary := seedCategory(t, db, user.ID, "Salary", domain.TypeIncome)

	err := ValidateBudgetPlacement(db, user.ID, salary.ID, date(2024, 1, 1), date(2024, 1, 31), 0)
	assert.ErrorIs(t, err, ErrInvalidCategoryType)
}

func TestValidateBudgetPlacementOverlap(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	existing := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		conflict bool
	}{
		{"contained inside", date(2024, 1, 10), date(2024, 1, 20), true},
		{"shared boundary day", date(2024, 1, 31), date(2024, 2, 29), true},
		{"straddles start", date(2023, 12, 15), date(2024, 1, 1), true},
		{"covers entirely", date(2023, 12, 1), date(2024, 2, 29), true},
		{"adjacent after", date(2024, 2, 1), date(2024, 2, 29), false},
		{"adjacent before", date(2023, 12, 1), date(2023, 12, 31), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBudgetPlacement(db, user.ID, groceries.ID, tt.start, tt.end, 0)
			if !tt.conflict {
				assert.NoError(t, err)
				return
			}
			var overlap *OverlapError
			require.ErrorAs(t, err, &overlap)
			assert.Equal(t, existing.ID, overlap.BudgetID)
		})
	}
}

func TestValidateBudgetPlacementSkipsExcludedBudget(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	existing := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	// A budget never conflicts with itself, so an update keeping the same
	// window passes when its own id is excluded.
	err := ValidateBudgetPlacement(db, user.ID, groceries.ID, date(2024, 1, 1), date(2024, 1, 31), existing.ID)
	assert.NoError(t, err)
}

func TestValidateBudgetPlacementIgnoresOtherCategories(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	transport := seedCategory(t, db, user.ID, "Transport", domain.TypeExpense)
	seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	// Same window on a different category is fine.
	err := ValidateBudgetPlacement(db, user.ID, transport.ID, date(2024, 1, 1), date(2024, 1, 31), 0)
	assert.NoError(t, err)
}

func TestCreateBudgetFresh(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)

	created, err := CreateBudget(db, user.ID, BudgetInput{
		CategoryID: groceries.ID,
		Amount:     money(t, "500"),
		Period:     domain.PeriodMonthly,
		StartDate:  date(2024, 1, 1),
		EndDate:    date(2024, 1, 31),
	})
	require.NoError(t, err)

	assert.Equal(t, "Groceries", created.CategoryName)
	requireDecimalEqual(t, "0", created.Usage.Spent)
	requireDecimalEqual(t, "500", created.Usage.Remaining)
	requireDecimalEqual(t, "0", created.Usage.PercentageUsed)
}

func TestCreateBudgetOverlapConflict(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	existing := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	_, err := CreateBudget(db, user.ID, BudgetInput{
		CategoryID: groceries.ID,
		Amount:     money(t, "300"),
		Period:     domain.PeriodMonthly,
		StartDate:  date(2024, 1, 31),
		EndDate:    date(2024, 2, 29),
	})
	var overlap *OverlapError
	require.ErrorAs(t, err, &overlap)
	assert.Equal(t, existing.ID, overlap.BudgetID)

	// The conflicting insert must not have left a row behind.
	var count int64
	require.NoError(t, db.Model(&domain.Budget{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestComputeBudgetUsage(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	transport := seedCategory(t, db, user.ID, "Transport", domain.TypeExpense)
	budget := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	seedTransaction(t, db, user.ID, &groceries.ID, "100", domain.TypeExpense, date(2024, 1, 5))
	usage, err := ComputeBudgetUsage(db, &budget)
	require.NoError(t, err)
	requireDecimalEqual(t, "100", usage.Spent)
	requireDecimalEqual(t, "400", usage.Remaining)
	requireDecimalEqual(t, "20", usage.PercentageUsed)

	// Another matching transaction moves spent by exactly its amount.
	seedTransaction(t, db, user.ID, &groceries.ID, "50.25", domain.TypeExpense, date(2024, 1, 31))
	usage, err = ComputeBudgetUsage(db, &budget)
	require.NoError(t, err)
	requireDecimalEqual(t, "150.25", usage.Spent)
	requireDecimalEqual(t, "349.75", usage.Remaining)

	// Outside the window, wrong category, wrong type: all ignored.
	seedTransaction(t, db, user.ID, &groceries.ID, "999", domain.TypeExpense, date(2024, 2, 1))
	seedTransaction(t, db, user.ID, &transport.ID, "999", domain.TypeExpense, date(2024, 1, 10))
	seedTransaction(t, db, user.ID, &groceries.ID, "999", domain.TypeIncome, date(2024, 1, 10))
	usage, err = ComputeBudgetUsage(db, &budget)
	require.NoError(t, err)
	requireDecimalEqual(t, "150.25", usage.Spent)
}

func TestComputeBudgetUsagePercentageCapped(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	budget := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))
	seedTransaction(t, db, user.ID, &groceries.ID, "600", domain.TypeExpense, date(2024, 1, 15))

	usage, err := ComputeBudgetUsage(db, &budget)
	require.NoError(t, err)
	requireDecimalEqual(t, "600", usage.Spent)
	requireDecimalEqual(t, "-100", usage.Remaining)
	requireDecimalEqual(t, "100", usage.PercentageUsed)
}

func TestUpdateBudgetEmptyPatch(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	budget := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	_, err := UpdateBudget(db, user.ID, budget.ID, BudgetPatch{})
	assert.ErrorIs(t, err, ErrNoFieldsProvided)
}

func TestUpdateBudgetAmountOnly(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	budget := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))
	seedTransaction(t, db, user.ID, &groceries.ID, "100", domain.TypeExpense, date(2024, 1, 5))

	amount := money(t, "200")
	updated, err := UpdateBudget(db, user.ID, budget.ID, BudgetPatch{Amount: &amount})
	require.NoError(t, err)
	requireDecimalEqual(t, "200", updated.Amount)
	requireDecimalEqual(t, "100", updated.Usage.Spent)
	requireDecimalEqual(t, "50", updated.Usage.PercentageUsed)
}

func TestUpdateBudgetWindowConflict(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	january := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))
	february := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 2, 1), date(2024, 2, 29))

	// Stretching January's end date onto February's window must fail.
	end := date(2024, 2, 1)
	_, err := UpdateBudget(db, user.ID, january.ID, BudgetPatch{EndDate: &end})
	var overlap *OverlapError
	require.ErrorAs(t, err, &overlap)
	assert.Equal(t, february.ID, overlap.BudgetID)

	// And the stored row is untouched.
	kept, err := GetBudget(db, user.ID, january.ID)
	require.NoError(t, err)
	assert.True(t, kept.EndDate.Equal(date(2024, 1, 31)))
}

func TestUpdateBudgetSingleDateInversion(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	budget := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 6, 1), date(2024, 6, 30))

	// Moving only one end of the window must not persist an inverted range.
	end := date(2024, 1, 1)
	_, err := UpdateBudget(db, user.ID, budget.ID, BudgetPatch{EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	start := date(2024, 12, 1)
	_, err = UpdateBudget(db, user.ID, budget.ID, BudgetPatch{StartDate: &start})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	kept, err := GetBudget(db, user.ID, budget.ID)
	require.NoError(t, err)
	assert.True(t, kept.StartDate.Equal(date(2024, 6, 1)))
	assert.True(t, kept.EndDate.Equal(date(2024, 6, 30)))
}

func TestCreateBudgetInvertedWindow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)

	_, err := CreateBudget(db, user.ID, BudgetInput{
		CategoryID: groceries.ID,
		Amount:     money(t, "500"),
		Period:     domain.PeriodMonthly,
		StartDate:  date(2024, 1, 31),
		EndDate:    date(2024, 1, 1),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGetBudgetMissingCategory(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	budget := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	// A budget whose category row is gone reads as a classified error, not a
	// raw store failure.
	require.NoError(t, db.Delete(&groceries).Error)
	_, err := GetBudget(db, user.ID, budget.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestUpdateBudgetNotFound(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")

	amount := money(t, "200")
	_, err := UpdateBudget(db, user.ID, 42, BudgetPatch{Amount: &amount})
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}

func TestDeleteBudget(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	other := seedUser(t, db, "other@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	budget := seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))

	// Another user cannot delete it.
	assert.ErrorIs(t, DeleteBudget(db, other.ID, budget.ID), ErrBudgetNotFound)

	require.NoError(t, DeleteBudget(db, user.ID, budget.ID))
	assert.ErrorIs(t, DeleteBudget(db, user.ID, budget.ID), ErrBudgetNotFound)
}

func TestListBudgetsFilterAndOrder(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	transport := seedCategory(t, db, user.ID, "Transport", domain.TypeExpense)
	seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))
	seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 2, 1), date(2024, 2, 29))
	seedBudget(t, db, user.ID, transport.ID, "6000", domain.PeriodYearly,
		date(2024, 1, 1), date(2024, 12, 31))

	all, err := ListBudgets(db, user.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest start date first.
	assert.True(t, all[0].StartDate.Equal(date(2024, 2, 1)))

	yearly, err := ListBudgets(db, user.ID, domain.PeriodYearly)
	require.NoError(t, err)
	require.Len(t, yearly, 1)
	assert.Equal(t, "Transport", yearly[0].CategoryName)
}

func TestBudgetSummary(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")
	groceries := seedCategory(t, db, user.ID, "Groceries", domain.TypeExpense)
	transport := seedCategory(t, db, user.ID, "Transport", domain.TypeExpense)
	dining := seedCategory(t, db, user.ID, "Dining Out", domain.TypeExpense)

	seedBudget(t, db, user.ID, groceries.ID, "500", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))
	seedBudget(t, db, user.ID, transport.ID, "100", domain.PeriodMonthly,
		date(2024, 1, 1), date(2024, 1, 31))
	// Expired window, excluded from the summary.
	seedBudget(t, db, user.ID, dining.ID, "250", domain.PeriodMonthly,
		date(2023, 12, 1), date(2023, 12, 31))

	seedTransaction(t, db, user.ID, &groceries.ID, "200", domain.TypeExpense, date(2024, 1, 10))
	seedTransaction(t, db, user.ID, &transport.ID, "150", domain.TypeExpense, date(2024, 1, 12))

	summary, err := BudgetSummary(db, user.ID, date(2024, 1, 15))
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.TotalBudgets)
	requireDecimalEqual(t, "600", summary.TotalAllocated)
	requireDecimalEqual(t, "350", summary.TotalSpent)
	requireDecimalEqual(t, "250", summary.TotalRemaining)
	assert.EqualValues(t, 1, summary.OverBudgetCount)
}

func TestBudgetSummaryEmpty(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")

	summary, err := BudgetSummary(db, user.ID, date(2024, 1, 15))
	require.NoError(t, err)
	assert.EqualValues(t, 0, summary.TotalBudgets)
	requireDecimalEqual(t, "0", summary.TotalAllocated)
	requireDecimalEqual(t, "0", summary.TotalSpent)
	assert.EqualValues(t, 0, summary.OverBudgetCount)
}

func TestGetBudgetNotFound(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "user@example.com")

	_, err := GetBudget(db, user.ID, 42)
	assert.True(t, errors.Is(err, ErrBudgetNotFound))
}
