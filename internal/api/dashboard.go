package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cache TTL and current time

	"finance_tracker/internal/ledger" // Core ledger aggregations
	"finance_tracker/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Fixed dashboard limits; the API has no pagination cursor
const (
	trendWindowMonths  = 6  // Trailing months in the monthly trend
	breakdownLimit     = 10 // Categories in the breakdown
	recentTransactions = 10 // Transactions in the recent list
	dashboardCacheTTL  = 60 * time.Second
)

// DashboardData is the complete dashboard payload
type DashboardData struct {
	Summary            summaryData              `json:"summary"`             // All-time totals
	MonthlyTrend       []ledger.MonthlyBucket   `json:"monthly_trend"`       // Trailing six months
	CategoryBreakdown  []ledger.CategoryTotal   `json:"category_breakdown"`  // Top categories by total
	RecentTransactions []recentTransactionData  `json:"recent_transactions"` // Latest activity
}

// summaryData is the all-time totals block
type summaryData struct {
	TotalTransactions int64  `json:"total_transactions"`
	TotalIncome       string `json:"total_income"`
	TotalExpense      string `json:"total_expense"`
	Balance           string `json:"balance"`
}

// recentTransactionData is a recent transaction with a date-only string
type recentTransactionData struct {
	ID              uint    `json:"id"`
	Amount          string  `json:"amount"`
	Type            string  `json:"type"`
	Description     *string `json:"description"`
	TransactionDate string  `json:"transaction_date"`
	CategoryName    *string `json:"category_name"`
	CategoryColor   *string `json:"category_color"`
	CategoryIcon    *string `json:"category_icon"`
}

// toSummaryData shapes the ledger totals for the API
func toSummaryData(t ledger.Totals) summaryData {
	return summaryData{
		TotalTransactions: t.TotalTransactions,
		TotalIncome:       t.TotalIncome.String(),
		TotalExpense:      t.TotalExpense.String(),
		Balance:           t.Balance.String(),
	}
}

// toRecentData shapes the recent transaction rows for the API
func toRecentData(rows []ledger.RecentTransaction) []recentTransactionData {
	out := make([]recentTransactionData, 0, len(rows))
	for i := range rows {
		out = append(out, recentTransactionData{
			ID:              rows[i].ID,
			Amount:          rows[i].Amount.String(),
			Type:            rows[i].Type,
			Description:     rows[i].Description,
			TransactionDate: formatDate(rows[i].TransactionDate),
			CategoryName:    rows[i].CategoryName,
			CategoryColor:   rows[i].CategoryColor,
			CategoryIcon:    rows[i].CategoryIcon,
		})
	}
	return out
}

// loadDashboard assembles the four dashboard reads
func loadDashboard(db *gorm.DB, userID uint) (*DashboardData, error) {
	totals, err := ledger.SummaryTotals(db, userID)
	if err != nil {
		return nil, err
	}
	trend, err := ledger.MonthlyTrend(db, userID, trendWindowMonths, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	breakdown, err := ledger.CategoryBreakdown(db, userID, breakdownLimit)
	if err != nil {
		return nil, err
	}
	recent, err := ledger.RecentTransactions(db, userID, recentTransactions)
	if err != nil {
		return nil, err
	}
	return &DashboardData{
		Summary:            toSummaryData(totals),
		MonthlyTrend:       trend,
		CategoryBreakdown:  breakdown,
		RecentTransactions: toRecentData(recent),
	}, nil
}

// DashboardHandler returns the complete dashboard, cached briefly in Redis
// and invalidated on every write
func DashboardHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		ctx := context.Background()                // Context for Redis operations
		cacheKey := utils.DashboardCacheKey(userID) // Cache key for this user
		var cached DashboardData
		// Try to get from cache
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": cached, "cached": true})
			return
		}
		data, err := loadDashboard(db, userID)
		if err != nil {
			respondLedgerError(c, err, "Failed to load dashboard")
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, data, dashboardCacheTTL) // Cache the dashboard
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "cached": false})
	}
}

// DashboardSummaryHandler returns only the all-time totals
func DashboardSummaryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		totals, err := ledger.SummaryTotals(db, userID)
		if err != nil {
			respondLedgerError(c, err, "Failed to get summary")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toSummaryData(totals)})
	}
}

// MonthlySummaryHandler returns the trailing monthly trend. Months with no
// activity are omitted, not zero-filled.
func MonthlySummaryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		trend, err := ledger.MonthlyTrend(db, userID, trendWindowMonths, time.Now().UTC())
		if err != nil {
			respondLedgerError(c, err, "Failed to get monthly summary")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": trend})
	}
}

// CategoryBreakdownHandler returns the top categories by transaction total
func CategoryBreakdownHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		breakdown, err := ledger.CategoryBreakdown(db, userID, breakdownLimit)
		if err != nil {
			respondLedgerError(c, err, "Failed to get category breakdown")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": breakdown})
	}
}

// RecentTransactionsHandler returns the latest transactions with category
// display fields
func RecentTransactionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		recent, err := ledger.RecentTransactions(db, userID, recentTransactions)
		if err != nil {
			respondLedgerError(c, err, "Failed to get recent transactions")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toRecentData(recent)})
	}
}
