package ledger

import (
	"errors"
	"fmt"
)

// Named error conditions so handlers can map each to a response code
// without string matching.
var (
	ErrCategoryNotOwned           = errors.New("category not found or does not belong to user") // Category missing or owned by someone else
	ErrInvalidCategoryType        = errors.New("budget can only be set for expense categories") // Budget against an income category
	ErrBudgetNotFound             = errors.New("budget not found")                               // Budget missing or owned by someone else
	ErrCategoryNotFound           = errors.New("category not found")                             // Category missing
	ErrTransactionNotFound        = errors.New("transaction not found")                          // Transaction missing
	ErrNoFieldsProvided           = errors.New("no fields provided for update")                  // Empty partial update
	ErrTransactionsStillReference = errors.New("category still has transactions associated with it") // Category delete guard
	ErrBudgetsStillReference      = errors.New("category still has budgets associated with it")      // Category delete guard
	ErrDuplicateCategory          = errors.New("category with this name and type already exists")    // (user, name, type) uniqueness
	ErrInvalidDateRange           = errors.New("end date must be after start date")                  // Inverted or zero-length window
)

// OverlapError reports a budget whose date range intersects the proposed one.
type OverlapError struct {
	BudgetID uint // The conflicting budget
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("budget %d already covers an overlapping period for this category", e.BudgetID)
}
