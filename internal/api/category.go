package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Response timestamps

	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/ledger" // Core ledger operations
	"finance_tracker/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Request struct for category creation
type CreateCategoryRequest struct {
	Name  string  `json:"name" binding:"required,max=100"`               // Category name
	Type  string  `json:"type" binding:"required,oneof=income expense"` // income or expense
	Color string  `json:"color" binding:"omitempty,hexcolor"`           // Optional display color
	Icon  *string `json:"icon" binding:"omitempty,max=50"`              // Optional icon name
}

// Request struct for sparse category updates
type UpdateCategoryRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`              // New name
	Type  *string `json:"type" binding:"omitempty,oneof=income expense"` // New type
	Color *string `json:"color" binding:"omitempty,hexcolor"`            // New color
	Icon  *string `json:"icon" binding:"omitempty,max=50"`               // New icon
}

// Public view of a category
type CategoryResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Icon      *string   `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// toCategoryResponse shapes a category row for the API
func toCategoryResponse(cat *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID,
		Name:      cat.Name,
		Type:      cat.Type,
		Color:     cat.Color,
		Icon:      cat.Icon,
		CreatedAt: cat.CreatedAt,
		UpdatedAt: cat.UpdatedAt,
	}
}

// categoryExists reports whether the user already has a category with this
// name and type, excluding excludeID (pass 0 on create)
func categoryExists(db *gorm.DB, userID uint, name, categoryType string, excludeID uint) (bool, error) {
	query := db.Model(&domain.Category{}).
		Where("user_id = ? AND name = ? AND type = ?", userID, name, categoryType)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCategoryHandler creates a category for the authenticated user
func CreateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req CreateCategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		// Enforce the (user, name, type) uniqueness invariant
		exists, err := categoryExists(db, userID, req.Name, req.Type, 0)
		if err != nil {
			respondLedgerError(c, err, "Failed to create category")
			return
		}
		if exists {
			respondLedgerError(c, ledger.ErrDuplicateCategory, "Failed to create category")
			return
		}
		// Fall back to the default color when none is supplied
		color := req.Color
		if color == "" {
			color = domain.DefaultColor
		}
		category := domain.Category{
			UserID: userID,
			Name:   req.Name,
			Type:   req.Type,
			Color:  color,
			Icon:   req.Icon,
		}
		// Save the new category
		if err := db.Create(&category).Error; err != nil {
			respondLedgerError(c, err, "Failed to create category")
			return
		}
		// Log the write
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,
			"category_id": category.ID,
			"type":        category.Type,
		}).Info("Category created")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": toCategoryResponse(&category)})
	}
}

// ListCategoriesHandler returns the user's categories, optionally filtered
// by type, ordered by name
func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		query := db.Where("user_id = ?", userID)
		// Optional type filter
		if t := c.Query("type"); t != "" {
			if t != domain.TypeIncome && t != domain.TypeExpense {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Type must be income or expense"})
				return
			}
			query = query.Where("type = ?", t)
		}
		var categories []domain.Category
		if err := query.Order("name ASC").Find(&categories).Error; err != nil {
			respondLedgerError(c, err, "Failed to list categories")
			return
		}
		responses := make([]CategoryResponse, 0, len(categories))
		for i := range categories {
			responses = append(responses, toCategoryResponse(&categories[i]))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": responses, "count": len(responses)})
	}
}

// CategoryStatsHandler returns per-category transaction count and total,
// ordered by total descending (all categories, no filter)
func CategoryStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		stats, err := ledger.CategoryStats(db, userID)
		if err != nil {
			respondLedgerError(c, err, "Failed to get category stats")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
	}
}

// GetCategoryHandler returns one category by ID
func GetCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		categoryID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		var category domain.Category
		if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": ledger.ErrCategoryNotFound.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toCategoryResponse(&category)})
	}
}

// UpdateCategoryHandler applies a sparse update to a category
func UpdateCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		categoryID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		var req UpdateCategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		patch := ledger.CategoryPatch{Name: req.Name, Type: req.Type, Color: req.Color, Icon: req.Icon}
		// At least one field must be present
		if patch.IsEmpty() {
			respondLedgerError(c, ledger.ErrNoFieldsProvided, "Failed to update category")
			return
		}
		var category domain.Category
		if err := db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": ledger.ErrCategoryNotFound.Error()})
			return
		}
		// Re-check uniqueness against the merged name/type
		if req.Name != nil || req.Type != nil {
			name := category.Name
			if req.Name != nil {
				name = *req.Name
			}
			categoryType := category.Type
			if req.Type != nil {
				categoryType = *req.Type
			}
			exists, err := categoryExists(db, userID, name, categoryType, categoryID)
			if err != nil {
				respondLedgerError(c, err, "Failed to update category")
				return
			}
			if exists {
				respondLedgerError(c, ledger.ErrDuplicateCategory, "Failed to update category")
				return
			}
		}
		// Apply only the supplied fields
		if err := db.Model(&category).Updates(patch.Changes()).Error; err != nil {
			respondLedgerError(c, err, "Failed to update category")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,
			"category_id": categoryID,
		}).Info("Category updated")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toCategoryResponse(&category)})
	}
}

// DeleteCategoryHandler deletes a category unless transactions still
// reference it
func DeleteCategoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		categoryID, ok := pathID(c) // Parse :id from the path
		if !ok {
			return
		}
		if err := ledger.DeleteCategory(db, userID, categoryID); err != nil {
			respondLedgerError(c, err, "Failed to delete category")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,
			"category_id": categoryID,
		}).Info("Category deleted")
		utils.InvalidateUserViews(context.Background(), rdb, userID) // Drop cached views
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
	}
}
