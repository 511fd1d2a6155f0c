package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"finance_tracker/internal/api"        // Custom package for API handlers
	"finance_tracker/internal/config"     // Custom package for configuration
	"finance_tracker/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes (public)
	auth := r.Group("/api/auth")
	auth.POST("/register", api.RegisterHandler(db, cfg.JWTSecret, cfg.JWTExpHours)) // Registration endpoint
	auth.POST("/login", api.LoginHandler(db, cfg.JWTSecret, cfg.JWTExpHours))       // Login endpoint

	// Everything below requires a valid bearer token
	protected := r.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	protected.GET("/auth/profile", api.ProfileHandler(db)) // Current user profile

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", api.CreateCategoryHandler(db, redisClient))       // Create category
	categories.GET("", api.ListCategoriesHandler(db))                     // List categories
	categories.GET("/stats", api.CategoryStatsHandler(db))                // Per-category stats
	categories.GET("/:id", api.GetCategoryHandler(db))                    // Get category
	categories.PUT("/:id", api.UpdateCategoryHandler(db, redisClient))    // Sparse update
	categories.DELETE("/:id", api.DeleteCategoryHandler(db, redisClient)) // Delete (guarded)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", api.CreateTransactionHandler(db, redisClient))       // Record transaction
	transactions.GET("", api.ListTransactionsHandler(db))                      // List with filters
	transactions.GET("/stats", api.TransactionStatsHandler(db))                // All-time totals
	transactions.GET("/:id", api.GetTransactionHandler(db))                    // Get transaction
	transactions.PUT("/:id", api.UpdateTransactionHandler(db, redisClient))    // Sparse update
	transactions.DELETE("/:id", api.DeleteTransactionHandler(db, redisClient)) // Delete transaction

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", api.CreateBudgetHandler(db, redisClient))       // Create with overlap validation
	budgets.GET("", api.ListBudgetsHandler(db, redisClient))         // List with derived figures
	budgets.GET("/summary", api.BudgetSummaryHandler(db))            // Active budget aggregate
	budgets.GET("/:id", api.GetBudgetHandler(db))                    // Get budget
	budgets.PUT("/:id", api.UpdateBudgetHandler(db, redisClient))    // Sparse update
	budgets.DELETE("/:id", api.DeleteBudgetHandler(db, redisClient)) // Delete budget

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.GET("", api.DashboardHandler(db, redisClient))          // Complete dashboard (cached)
	dashboard.GET("/summary", api.DashboardSummaryHandler(db))        // All-time totals
	dashboard.GET("/monthly", api.MonthlySummaryHandler(db))          // Monthly trend
	dashboard.GET("/categories", api.CategoryBreakdownHandler(db))    // Category breakdown
	dashboard.GET("/recent", api.RecentTransactionsHandler(db))       // Recent transactions

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
