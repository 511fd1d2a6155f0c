package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Response timestamps

	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`        // Email must be provided and valid
	Password string `json:"password" binding:"required,min=8"`     // Password must be at least 8 characters
	FullName string `json:"full_name" binding:"required,max=255"`  // Display name must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// Public view of a user (never includes the password hash)
type UserResponse struct {
	ID        uint      `json:"id"`         // User ID
	Email     string    `json:"email"`      // Email address
	FullName  string    `json:"full_name"`  // Display name
	CreatedAt time.Time `json:"created_at"` // Registration time
}

// Response struct for authentication
type AuthResponse struct {
	User  UserResponse `json:"user"`  // Registered/logged-in user
	Token string       `json:"token"` // JWT token
}

// Categories seeded for every new user. Seeding is best-effort and not
// transactionally tied to registration.
var defaultCategories = []domain.Category{
	{Name: "Salary", Type: domain.TypeIncome, Color: "#4CAF50", Icon: ptr("briefcase")},
	{Name: "Freelance", Type: domain.TypeIncome, Color: "#8BC34A", Icon: ptr("laptop")},
	{Name: "Groceries", Type: domain.TypeExpense, Color: "#FF9800", Icon: ptr("shopping-cart")},
	{Name: "Transport", Type: domain.TypeExpense, Color: "#2196F3", Icon: ptr("car")},
	{Name: "Entertainment", Type: domain.TypeExpense, Color: "#9C27B0", Icon: ptr("film")},
	{Name: "Utilities", Type: domain.TypeExpense, Color: "#607D8B", Icon: ptr("zap")},
	{Name: "Dining Out", Type: domain.TypeExpense, Color: "#F44336", Icon: ptr("coffee")},
	{Name: "Healthcare", Type: domain.TypeExpense, Color: "#00BCD4", Icon: ptr("heart")},
}

// ptr returns a pointer to the given string
func ptr(s string) *string { return &s }

// seedDefaultCategories creates the starter categories for a new user
func seedDefaultCategories(db *gorm.DB, userID uint) error {
	categories := make([]domain.Category, len(defaultCategories))
	for i, c := range defaultCategories {
		c.UserID = userID // Attach to the new user
		categories[i] = c
	}
	return db.Create(&categories).Error
}

// toUserResponse strips a user down to its public fields
func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt}
}

// RegisterHandler creates a user, seeds default categories and returns a token
func RegisterHandler(db *gorm.DB, jwtSecret string, jwtExpHours int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		// Hash the password
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to hash password"})
			return
		}
		// Create user with lowercase email so uniqueness is case-insensitive
		user := domain.User{
			Email:    strings.ToLower(req.Email),
			Password: string(hash),
			FullName: req.FullName,
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// If creation fails (e.g., duplicate email), return conflict
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Email already registered"})
			return
		}
		// Seed starter categories; failure never fails registration
		if err := seedDefaultCategories(db, user.ID); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Warn("Failed to seed default categories")
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret, jwtExpHours)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   user.Email,
		}).Info("User registered")
		// Return user and token
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User registered successfully",
			"data":    AuthResponse{User: toUserResponse(&user), Token: token},
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string, jwtExpHours int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret, jwtExpHours)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
			return
		}
		// Return the user and token in the response
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    AuthResponse{User: toUserResponse(&user), Token: token},
		})
	}
}

// ProfileHandler returns the authenticated user's profile
func ProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Token was valid but the user row is gone
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}
		// Return the profile without the password hash
		c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(&user)})
	}
}
