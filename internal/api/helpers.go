package api

import (
	"errors"   // Error classification
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"time"     // Date parsing

	"finance_tracker/internal/ledger" // Core ledger errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Wire format for calendar dates
const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD date with no time component
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// formatDate renders a date back to YYYY-MM-DD
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// currentUserID extracts the authenticated user ID set by the JWT middleware.
// Writes the 401 response itself when the ID is missing.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return 0, false
	}
	return v.(uint), true
}

// pathID parses the :id path parameter as a positive integer.
// Writes the 400 response itself on bad input.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ID must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

// respondLedgerError maps a ledger error to the matching HTTP response.
// Unclassified errors are treated as store failures: logged with context and
// reported as a generic 500 without internal detail.
func respondLedgerError(c *gin.Context, err error, fallback string) {
	var overlap *ledger.OverlapError
	switch {
	case errors.As(err, &overlap):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, ledger.ErrDuplicateCategory),
		errors.Is(err, ledger.ErrTransactionsStillReference),
		errors.Is(err, ledger.ErrBudgetsStillReference):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, ledger.ErrBudgetNotFound),
		errors.Is(err, ledger.ErrCategoryNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrCategoryNotOwned):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidCategoryType),
		errors.Is(err, ledger.ErrNoFieldsProvided),
		errors.Is(err, ledger.ErrInvalidDateRange):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		// Store failure; do not leak internals to the client
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fallback})
	}
}
