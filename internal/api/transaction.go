package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Query parameter parsing
	"time"     // Response timestamps

	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/ledger" // Core ledger operations
	"finance_tracker/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Decimal money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// Request struct for transaction creation
type CreateTransactionRequest struct {
	CategoryID      *uint           `json:"category_id"`                                  // Optional category
	Amount          decimal.Decimal `json:"amount" binding:"required"`                    // Positive amount
	Type            string          `json:"type" binding:"required,oneof=income expense"` // income or expense
	Description     *string         `json:"description" binding:"omitempty,max=255"`      // Optional description
	TransactionDate string          `json:"transaction_date" binding:"required"`          // YYYY-MM-DD
}

// Request struct for sparse transaction updates
type UpdateTransactionRequest struct {
	CategoryID      *uint            `json:"category_id"`                                    // New category
	Amount          *decimal.Decimal `json:"amount"`                                         // New amount
	Type            *string          `json:"type" binding:"omitempty,oneof=income expense"`  // New type
	Description     *string          `json:"description" binding:"omitempty,max=255"`        // New description
	TransactionDate *string          `json:"transaction_date"`                               // New date, YYYY-MM-DD
}

// Public view of a transaction with category display fields
type TransactionResponse struct {
	ID              uint            `json:"id"`
	CategoryID      *uint           `json:"category_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Description     *string         `json:"description"`
	TransactionDate string          `json:"transaction_date"`
	CategoryName    *string         `json:"category_name"`
	CategoryColor   *string         `json:"category_color"`
	CategoryIcon    *string         `json:"category_icon"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// toTransactionResponse joins a transaction with its category, null-safe
// when the transaction is uncategorized
func toTransactionResponse(db *gorm.DB, t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID,
		CategoryID:      t.CategoryID,
		Amount:          t.Amount,
		Type:            t.Type,
		Description:     t.Description,
		TransactionDate: formatDate(t.TransactionDate),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	// Attach category display fields when a category is set
	if t.CategoryID != nil {
		var category domain.Category
		if err := db.First(&category, *t.CategoryID).Error; err == nil {
			resp.CategoryName = &category.Name
			resp.CategoryColor = &category.Color
			resp.CategoryIcon = category.Icon
		}
	}
	return resp
}

// verifyCategoryOwnership checks that the category belongs to the user
func verifyCategoryOwnership(db *gorm.DB, userID, categoryID uint) error {
	var category domain.Category
	if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		return ledger.ErrCategoryNotOwned
	}
	return nil
}

// CreateTransactionHandler records an income or expense transaction
func CreateTransactionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req CreateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		// Amount must be positive
		if !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Amount must be a positive number"})
			return
		}
		// Parse the calendar date
		transactionDate, err := parseDate(req.TransactionDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Transaction date must be in YYYY-MM-DD format"})
			return
		}
		// A referenced category must belong to the same user
		if req.CategoryID != nil {
			if err := verifyCategoryOwnership(db, userID, *req.CategoryID); err != nil {
				respondLedgerError(c, err, "Failed to create transaction")
				return
			}
		}
		transaction := domain.Transaction{
			UserID:          userID,
			CategoryID:      req.CategoryID,
			Amount:          req.Amount,
			Type:            req.Type,
			Description:     req.Description,
			TransactionDate: transactionDate,
		}
		// Save the new transaction
		if err := db.Create(&transaction).Error; err != nil {
			respondLedgerError(c, err, "Failed to create transaction")
			return
		}
		// Log the write
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,
			"transaction_id": transaction.ID,
			"type":           transaction.Type,
			"amount":         transaction.Amount.String(),
		}).Info("Transaction created")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": toTransactionResponse(db, &transaction)})
	}
}

// ListTransactionsHandler returns the user's transactions with optional
// filters: type, category_id, start_date, end_date, min_amount, max_amount
func ListTransactionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		query := db.Where("user_id = ?", userID)
		// Type filter
		if t := c.Query("type"); t != "" {
			if t != domain.TypeIncome && t != domain.TypeExpense {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Type must be income or expense"})
				return
			}
			query = query.Where("type = ?", t)
		}
		// Category filter
		if raw := c.Query("category_id"); raw != "" {
			categoryID, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || categoryID == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Category ID must be a positive integer"})
				return
			}
			query = query.Where("category_id = ?", uint(categoryID))
		}
		// Date range filters
		if raw := c.Query("start_date"); raw != "" {
			start, err := parseDate(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Start date must be in YYYY-MM-DD format"})
				return
			}
			query = query.Where("transaction_date >= ?", start)
		}
		if raw := c.Query("end_date"); raw != "" {
			end, err := parseDate(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "End date must be in YYYY-MM-DD format"})
				return
			}
			query = query.Where("transaction_date <= ?", end)
		}
		// Amount range filters
		if raw := c.Query("min_amount"); raw != "" {
			minAmount, err := decimal.NewFromString(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Min amount must be a number"})
				return
			}
			query = query.Where("amount >= ?", minAmount)
		}
		if raw := c.Query("max_amount"); raw != "" {
			maxAmount, err := decimal.NewFromString(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Max amount must be a number"})
				return
			}
			query = query.Where("amount <= ?", maxAmount)
		}
		var transactions []domain.Transaction
		// Newest first, creation time as tie-break
		if err := query.Order("transaction_date DESC, created_at DESC").Find(&transactions).Error; err != nil {
			respondLedgerError(c, err, "Failed to list transactions")
			return
		}
		responses := make([]TransactionResponse, 0, len(transactions))
		for i := range transactions {
			responses = append(responses, toTransactionResponse(db, &transactions[i]))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": responses, "count": len(responses)})
	}
}

// TransactionStatsHandler returns the all-time totals for the user
func TransactionStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		totals, err := ledger.SummaryTotals(db, userID)
		if err != nil {
			respondLedgerError(c, err, "Failed to get transaction stats")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"total_transactions": totals.TotalTransactions,
			"total_income":       totals.TotalIncome,
			"total_expense":      totals.TotalExpense,
			"balance":            totals.Balance,
		}})
	}
}

// GetTransactionHandler returns one transaction by ID
func GetTransactionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		transactionID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		var transaction domain.Transaction
		if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": ledger.ErrTransactionNotFound.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toTransactionResponse(db, &transaction)})
	}
}

// UpdateTransactionHandler applies a sparse update to a transaction
func UpdateTransactionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		transactionID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		var req UpdateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		patch := ledger.TransactionPatch{
			CategoryID:  req.CategoryID,
			Amount:      req.Amount,
			Type:        req.Type,
			Description: req.Description,
		}
		if req.TransactionDate != nil {
			transactionDate, err := parseDate(*req.TransactionDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Transaction date must be in YYYY-MM-DD format"})
				return
			}
			patch.TransactionDate = &transactionDate
		}
		// At least one field must be present
		if patch.IsEmpty() {
			respondLedgerError(c, ledger.ErrNoFieldsProvided, "Failed to update transaction")
			return
		}
		// A supplied amount must be positive
		if patch.Amount != nil && !patch.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Amount must be a positive number"})
			return
		}
		// A supplied category must belong to the same user
		if patch.CategoryID != nil {
			if err := verifyCategoryOwnership(db, userID, *patch.CategoryID); err != nil {
				respondLedgerError(c, err, "Failed to update transaction")
				return
			}
		}
		var transaction domain.Transaction
		if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": ledger.ErrTransactionNotFound.Error()})
			return
		}
		// Apply only the supplied fields
		if err := db.Model(&transaction).Updates(patch.Changes()).Error; err != nil {
			respondLedgerError(c, err, "Failed to update transaction")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,
			"transaction_id": transactionID,
		}).Info("Transaction updated")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toTransactionResponse(db, &transaction)})
	}
}

// DeleteTransactionHandler deletes a transaction
func DeleteTransactionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		transactionID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		result := db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&domain.Transaction{})
		if result.Error != nil {
			respondLedgerError(c, result.Error, "Failed to delete transaction")
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": ledger.ErrTransactionNotFound.Error()})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":        userID,
			"transaction_id": transactionID,
		}).Info("Transaction deleted")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Transaction deleted successfully"})
	}
}
