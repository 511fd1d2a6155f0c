package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sparse update inputs. Each field is applied only when present, so a
// partial update never touches columns the caller did not supply.

// BudgetPatch is a sparse update for a budget row.
type BudgetPatch struct {
	CategoryID *uint            // New category (must be an owned expense category)
	Amount     *decimal.Decimal // New budgeted amount
	Period     *string          // New period tag
	StartDate  *time.Time       // New start date
	EndDate    *time.Time       // New end date
}

// IsEmpty reports whether no field was supplied.
func (p BudgetPatch) IsEmpty() bool {
	return p.CategoryID == nil && p.Amount == nil && p.Period == nil &&
		p.StartDate == nil && p.EndDate == nil
}

// Changes returns the column updates for the supplied fields.
func (p BudgetPatch) Changes() map[string]any {
	changes := map[string]any{}
	if p.CategoryID != nil {
		changes["category_id"] = *p.CategoryID
	}
	if p.Amount != nil {
		changes["amount"] = *p.Amount
	}
	if p.Period != nil {
		changes["period"] = *p.Period
	}
	if p.StartDate != nil {
		changes["start_date"] = *p.StartDate
	}
	if p.EndDate != nil {
		changes["end_date"] = *p.EndDate
	}
	return changes
}

// CategoryPatch is a sparse update for a category row.
type CategoryPatch struct {
	Name  *string // New name
	Type  *string // New type (income/expense)
	Color *string // New display color
	Icon  *string // New icon name
}

// IsEmpty reports whether no field was supplied.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Color == nil && p.Icon == nil
}

// Changes returns the column updates for the supplied fields.
func (p CategoryPatch) Changes() map[string]any {
	changes := map[string]any{}
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.Type != nil {
		changes["type"] = *p.Type
	}
	if p.Color != nil {
		changes["color"] = *p.Color
	}
	if p.Icon != nil {
		changes["icon"] = *p.Icon
	}
	return changes
}

// TransactionPatch is a sparse update for a transaction row.
type TransactionPatch struct {
	CategoryID      *uint            // New category (must belong to the same user)
	Amount          *decimal.Decimal // New amount
	Type            *string          // New type (income/expense)
	Description     *string          // New description
	TransactionDate *time.Time       // New calendar date
}

// IsEmpty reports whether no field was supplied.
func (p TransactionPatch) IsEmpty() bool {
	return p.CategoryID == nil && p.Amount == nil && p.Type == nil &&
		p.Description == nil && p.TransactionDate == nil
}

// Changes returns the column updates for the supplied fields.
func (p TransactionPatch) Changes() map[string]any {
	changes := map[string]any{}
	if p.CategoryID != nil {
		changes["category_id"] = *p.CategoryID
	}
	if p.Amount != nil {
		changes["amount"] = *p.Amount
	}
	if p.Type != nil {
		changes["type"] = *p.Type
	}
	if p.Description != nil {
		changes["description"] = *p.Description
	}
	if p.TransactionDate != nil {
		changes["transaction_date"] = *p.TransactionDate
	}
	return changes
}
