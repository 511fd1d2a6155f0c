package ledger

import (
	"errors"
	"time"

	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// BudgetInput holds the fields required to create a budget.
type BudgetInput struct {
	CategoryID uint            // Expense category owned by the user
	Amount     decimal.Decimal // Budgeted amount, positive
	Period     string          // monthly or yearly
	StartDate  time.Time       // First day covered, inclusive
	EndDate    time.Time       // Last day covered, inclusive
}

// BudgetUsage holds the derived figures for a budget, computed from the
// transaction ledger at read time.
type BudgetUsage struct {
	Spent          decimal.Decimal // Sum of matching expense transactions
	Remaining      decimal.Decimal // Amount minus spent, may be negative
	PercentageUsed decimal.Decimal // Clamped to [0, 100]
}

// BudgetWithUsage is a budget row joined with its category display fields
// and derived usage figures.
type BudgetWithUsage struct {
	domain.Budget
	CategoryName  string
	CategoryColor string
	Usage         BudgetUsage
}

// BudgetSummaryRow aggregates the budgets active on a given day.
type BudgetSummaryRow struct {
	TotalBudgets    int64           // Number of active budgets
	TotalAllocated  decimal.Decimal // Sum of budgeted amounts
	TotalSpent      decimal.Decimal // Sum of spent within each budget window
	TotalRemaining  decimal.Decimal // Allocated minus spent
	OverBudgetCount int64           // Budgets whose spent exceeds their amount
}

// ValidateBudgetPlacement checks that a budget for (userID, categoryID)
// covering [start, end] may be written. It verifies window ordering,
// category ownership and type, then scans for an inclusively overlapping
// budget on the same category, skipping excludeBudgetID (pass 0 on create)
// so an update does not conflict with itself. Read-only; call it inside the
// transaction that performs the write.
func ValidateBudgetPlacement(db *gorm.DB, userID, categoryID uint, start, end time.Time, excludeBudgetID uint) error {
	// The merged window must stay ordered even when a sparse update moves
	// only one end of it.
	if !end.After(start) {
		return ErrInvalidDateRange
	}
	var category domain.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotOwned
		}
		return err
	}
	if category.Type != domain.TypeExpense {
		return ErrInvalidCategoryType
	}

	// Inclusive interval intersection: [s,e] overlaps [start,end]
	// iff s <= end AND e >= start. Budgets sharing a boundary date conflict.
	query := db.Where("user_id = ? AND category_id = ?", userID, categoryID).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeBudgetID != 0 {
		query = query.Where("id <> ?", excludeBudgetID)
	}
	var conflict domain.Budget
	err := query.Take(&conflict).Error
	if err == nil {
		return &OverlapError{BudgetID: conflict.ID}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// ComputeBudgetUsage sums the user's expense transactions for the budget's
// category inside its date window, both ends inclusive.
func ComputeBudgetUsage(db *gorm.DB, budget *domain.Budget) (BudgetUsage, error) {
	var row struct {
		Spent decimal.Decimal
	}
	err := db.Model(&domain.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS spent").
		Where("user_id = ? AND category_id = ? AND type = ?", budget.UserID, budget.CategoryID, domain.TypeExpense).
		Where("transaction_date BETWEEN ? AND ?", budget.StartDate, budget.EndDate).
		Scan(&row).Error
	if err != nil {
		return BudgetUsage{}, err
	}

	spent := row.Spent
	remaining := budget.Amount.Sub(spent)
	percentage := decimal.Zero
	if budget.Amount.IsPositive() {
		percentage = spent.Div(budget.Amount).Mul(hundred).Round(2)
	}
	// Clamp to [0, 100] on every budget-returning operation, create included.
	if percentage.GreaterThan(hundred) {
		percentage = hundred
	}
	if percentage.IsNegative() {
		percentage = decimal.Zero
	}
	return BudgetUsage{Spent: spent, Remaining: remaining, PercentageUsed: percentage}, nil
}

// CreateBudget validates placement and inserts the budget inside a single
// transaction, so two near-simultaneous creates cannot both pass the
// overlap scan.
func CreateBudget(db *gorm.DB, userID uint, in BudgetInput) (*BudgetWithUsage, error) {
	var created domain.Budget
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ValidateBudgetPlacement(tx, userID, in.CategoryID, in.StartDate, in.EndDate, 0); err != nil {
			return err
		}
		created = domain.Budget{
			UserID:     userID,
			CategoryID: in.CategoryID,
			Amount:     in.Amount,
			Period:     in.Period,
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return GetBudget(db, userID, created.ID)
}

// GetBudget loads one budget with category display fields and usage.
func GetBudget(db *gorm.DB, userID, budgetID uint) (*BudgetWithUsage, error) {
	var budget domain.Budget
	if err := db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}
	var category domain.Category
	if err := db.First(&category, budget.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	usage, err := ComputeBudgetUsage(db, &budget)
	if err != nil {
		return nil, err
	}
	return &BudgetWithUsage{
		Budget:        budget,
		CategoryName:  category.Name,
		CategoryColor: category.Color,
		Usage:         usage,
	}, nil
}

// ListBudgets returns the user's budgets, newest start date first,
// optionally filtered by period, each with usage figures.
func ListBudgets(db *gorm.DB, userID uint, period string) ([]BudgetWithUsage, error) {
	query := db.Where("user_id = ?", userID)
	if period != "" {
		query = query.Where("period = ?", period)
	}
	var budgets []domain.Budget
	if err := query.Order("start_date DESC").Find(&budgets).Error; err != nil {
		return nil, err
	}

	// Category display fields, one fetch for the whole list
	var categories []domain.Category
	if err := db.Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	result := make([]BudgetWithUsage, 0, len(budgets))
	for i := range budgets {
		usage, err := ComputeBudgetUsage(db, &budgets[i])
		if err != nil {
			return nil, err
		}
		category := byID[budgets[i].CategoryID]
		result = append(result, BudgetWithUsage{
			Budget:        budgets[i],
			CategoryName:  category.Name,
			CategoryColor: category.Color,
			Usage:         usage,
		})
	}
	return result, nil
}

// UpdateBudget applies a sparse patch to a budget. Placement is re-validated
// against the merged values inside the same transaction as the write.
func UpdateBudget(db *gorm.DB, userID, budgetID uint, patch BudgetPatch) (*BudgetWithUsage, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFieldsProvided
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		var current domain.Budget
		if err := tx.Where("id = ? AND user_id = ?", budgetID, userID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBudgetNotFound
			}
			return err
		}

		// Merge supplied fields onto the stored row for validation
		categoryID := current.CategoryID
		if patch.CategoryID != nil {
			categoryID = *patch.CategoryID
		}
		start := current.StartDate
		if patch.StartDate != nil {
			start = *patch.StartDate
		}
		end := current.EndDate
		if patch.EndDate != nil {
			end = *patch.EndDate
		}
		if err := ValidateBudgetPlacement(tx, userID, categoryID, start, end, budgetID); err != nil {
			return err
		}
		return tx.Model(&current).Updates(patch.Changes()).Error
	})
	if err != nil {
		return nil, err
	}
	return GetBudget(db, userID, budgetID)
}

// DeleteBudget removes a budget owned by the user.
func DeleteBudget(db *gorm.DB, userID, budgetID uint) error {
	result := db.Where("id = ? AND user_id = ?", budgetID, userID).Delete(&domain.Budget{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

// BudgetSummary aggregates the budgets whose window contains today:
// spent is computed per budget inside its own window, not all-time.
func BudgetSummary(db *gorm.DB, userID uint, today time.Time) (BudgetSummaryRow, error) {
	var budgets []domain.Budget
	err := db.Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, today, today).
		Find(&budgets).Error
	if err != nil {
		return BudgetSummaryRow{}, err
	}

	summary := BudgetSummaryRow{
		TotalAllocated: decimal.Zero,
		TotalSpent:     decimal.Zero,
		TotalRemaining: decimal.Zero,
	}
	for i := range budgets {
		usage, err := ComputeBudgetUsage(db, &budgets[i])
		if err != nil {
			return BudgetSummaryRow{}, err
		}
		summary.TotalBudgets++
		summary.TotalAllocated = summary.TotalAllocated.Add(budgets[i].Amount)
		summary.TotalSpent = summary.TotalSpent.Add(usage.Spent)
		summary.TotalRemaining = summary.TotalRemaining.Add(usage.Remaining)
		if usage.Spent.GreaterThan(budgets[i].Amount) {
			summary.OverBudgetCount++
		}
	}
	return summary, nil
}
