package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Date arithmetic and timestamps

	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/ledger" // Core ledger operations
	"finance_tracker/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Decimal money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// Soft day-count limits for the advisory period tag
const (
	maxMonthlyDays = 31  // A monthly budget may span at most 31 days
	maxYearlyDays  = 366 // A yearly budget may span at most 366 days
)

// Budget list cache TTL
const budgetCacheTTL = 60 * time.Second

// Request struct for budget creation
type CreateBudgetRequest struct {
	CategoryID uint            `json:"category_id" binding:"required"`                 // Expense category
	Amount     decimal.Decimal `json:"amount" binding:"required"`                      // Positive amount
	Period     string          `json:"period" binding:"required,oneof=monthly yearly"` // monthly or yearly
	StartDate  string          `json:"start_date" binding:"required"`                  // YYYY-MM-DD
	EndDate    string          `json:"end_date" binding:"required"`                    // YYYY-MM-DD
}

// Request struct for sparse budget updates
type UpdateBudgetRequest struct {
	CategoryID *uint            `json:"category_id"`                                     // New category
	Amount     *decimal.Decimal `json:"amount"`                                          // New amount
	Period     *string          `json:"period" binding:"omitempty,oneof=monthly yearly"` // New period
	StartDate  *string          `json:"start_date"`                                      // New start date
	EndDate    *string          `json:"end_date"`                                        // New end date
}

// Public view of a budget with its derived figures
type BudgetResponse struct {
	ID              uint            `json:"id"`
	CategoryID      uint            `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	CategoryColor   string          `json:"category_color"`
	Amount          decimal.Decimal `json:"amount"`
	Period          string          `json:"period"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PercentageUsed  decimal.Decimal `json:"percentage_used"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// toBudgetResponse shapes a budget with its usage for the API
func toBudgetResponse(b *ledger.BudgetWithUsage) BudgetResponse {
	return BudgetResponse{
		ID:              b.ID,
		CategoryID:      b.CategoryID,
		CategoryName:    b.CategoryName,
		CategoryColor:   b.CategoryColor,
		Amount:          b.Amount,
		Period:          b.Period,
		StartDate:       formatDate(b.StartDate),
		EndDate:         formatDate(b.EndDate),
		SpentAmount:     b.Usage.Spent,
		RemainingAmount: b.Usage.Remaining,
		PercentageUsed:  b.Usage.PercentageUsed,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// validateBudgetDates enforces end > start and the soft day-count check
// against the advisory period tag. Writes the 400 response itself.
func validateBudgetDates(c *gin.Context, period string, start, end time.Time) bool {
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "End date must be after start date"})
		return false
	}
	days := int(end.Sub(start).Hours()/24) + 1 // Inclusive day count
	if period == domain.PeriodMonthly && days > maxMonthlyDays {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Monthly budget should not exceed 31 days"})
		return false
	}
	if period == domain.PeriodYearly && days > maxYearlyDays {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Yearly budget should not exceed 366 days"})
		return false
	}
	return true
}

// CreateBudgetHandler creates a budget after overlap validation; the check
// and the insert run in one store transaction
func CreateBudgetHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req CreateBudgetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		// Amount must be positive
		if !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Amount must be a positive number"})
			return
		}
		// Parse the date window
		start, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Start date must be in YYYY-MM-DD format"})
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "End date must be in YYYY-MM-DD format"})
			return
		}
		if !validateBudgetDates(c, req.Period, start, end) {
			return
		}
		budget, err := ledger.CreateBudget(db, userID, ledger.BudgetInput{
			CategoryID: req.CategoryID,
			Amount:     req.Amount,
			Period:     req.Period,
			StartDate:  start,
			EndDate:    end,
		})
		if err != nil {
			respondLedgerError(c, err, "Failed to create budget")
			return
		}
		// Log the write
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,
			"budget_id":   budget.ID,
			"category_id": budget.CategoryID,
			"amount":      budget.Amount.String(),
		}).Info("Budget created")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Budget created successfully",
			"data":    toBudgetResponse(budget),
		})
	}
}

// ListBudgetsHandler returns the user's budgets with derived figures,
// optionally filtered by period, cached briefly in Redis
func ListBudgetsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		period := c.Query("period") // Optional period filter
		if period != "" && period != domain.PeriodMonthly && period != domain.PeriodYearly {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Period must be monthly or yearly"})
			return
		}
		ctx := context.Background()                          // Context for Redis operations
		cacheKey := utils.BudgetListCacheKey(userID, period) // Cache key for this list
		var cached []BudgetResponse
		// Try to get from cache
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": cached, "count": len(cached), "cached": true})
			return
		}
		budgets, err := ledger.ListBudgets(db, userID, period)
		if err != nil {
			respondLedgerError(c, err, "Failed to list budgets")
			return
		}
		responses := make([]BudgetResponse, 0, len(budgets))
		for i := range budgets {
			responses = append(responses, toBudgetResponse(&budgets[i]))
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, responses, budgetCacheTTL) // Cache the list
		c.JSON(http.StatusOK, gin.H{"success": true, "data": responses, "count": len(responses), "cached": false})
	}
}

// BudgetSummaryHandler aggregates the budgets active today
func BudgetSummaryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		summary, err := ledger.BudgetSummary(db, userID, time.Now().UTC().Truncate(24*time.Hour))
		if err != nil {
			respondLedgerError(c, err, "Failed to get budget summary")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"total_budgets":       summary.TotalBudgets,
			"total_budget_amount": summary.TotalAllocated,
			"total_spent":         summary.TotalSpent,
			"total_remaining":     summary.TotalRemaining,
			"over_budget_count":   summary.OverBudgetCount,
		}})
	}
}

// GetBudgetHandler returns one budget with derived figures
func GetBudgetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		budgetID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		budget, err := ledger.GetBudget(db, userID, budgetID)
		if err != nil {
			respondLedgerError(c, err, "Failed to get budget")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toBudgetResponse(budget)})
	}
}

// UpdateBudgetHandler applies a sparse update; placement is re-validated
// against the merged values
func UpdateBudgetHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		budgetID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		var req UpdateBudgetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		patch := ledger.BudgetPatch{
			CategoryID: req.CategoryID,
			Amount:     req.Amount,
			Period:     req.Period,
		}
		if req.StartDate != nil {
			start, err := parseDate(*req.StartDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Start date must be in YYYY-MM-DD format"})
				return
			}
			patch.StartDate = &start
		}
		if req.EndDate != nil {
			end, err := parseDate(*req.EndDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "End date must be in YYYY-MM-DD format"})
				return
			}
			patch.EndDate = &end
		}
		// A supplied amount must be positive
		if patch.Amount != nil && !patch.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Amount must be a positive number"})
			return
		}
		// Merge the patch onto the stored row so the ordering and day-count
		// checks see the window the update would actually persist
		var current domain.Budget
		if err := db.Where("id = ? AND user_id = ?", budgetID, userID).First(&current).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": ledger.ErrBudgetNotFound.Error()})
			return
		}
		period := current.Period
		if req.Period != nil {
			period = *req.Period
		}
		start := current.StartDate
		if patch.StartDate != nil {
			start = *patch.StartDate
		}
		end := current.EndDate
		if patch.EndDate != nil {
			end = *patch.EndDate
		}
		if !validateBudgetDates(c, period, start, end) {
			return
		}
		budget, err := ledger.UpdateBudget(db, userID, budgetID, patch)
		if err != nil {
			respondLedgerError(c, err, "Failed to update budget")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"budget_id": budgetID,
		}).Info("Budget updated")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toBudgetResponse(budget)})
	}
}

// DeleteBudgetHandler deletes a budget
func DeleteBudgetHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		budgetID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		if err := ledger.DeleteBudget(db, userID, budgetID); err != nil {
			respondLedgerError(c, err, "Failed to delete budget")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"budget_id": budgetID,
		}).Info("Budget deleted")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Budget deleted successfully"})
	}
}
