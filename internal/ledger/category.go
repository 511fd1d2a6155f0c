package ledger

import (
	"finance_tracker/internal/domain"

	"gorm.io/gorm"
)

// DeleteCategory removes a category owned by the user. A category that any
// transaction or budget still references cannot be deleted; the caller must
// delete or reassign those rows first. The guards and the delete run in one
// transaction.
func DeleteCategory(db *gorm.DB, userID, categoryID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Transaction{}).
			Where("category_id = ? AND user_id = ?", categoryID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTransactionsStillReference
		}
		// Budgets hold the same reference; deleting under them would orphan
		// their category joins.
		if err := tx.Model(&domain.Budget{}).
			Where("category_id = ? AND user_id = ?", categoryID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrBudgetsStillReference
		}
		result := tx.Where("id = ? AND user_id = ?", categoryID, userID).Delete(&domain.Category{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}
