package main

import (
	"context"                          // context package is needed for Redis operations
	"staff_records/internal/api"       // Custom package for API handlers
	"staff_records/internal/config"    // Custom package for configuration
	"staff_records/internal/db"        // Custom package for database access
	"staff_records/internal/integrity" // Integrity rule engine
	"staff_records/internal/service"   // Account and note managers
	"staff_records/internal/store"     // Record store
	"staff_records/internal/utils"     // Hashing and locking utilities

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	// Connect to the database, or keep records in memory for local runs
	var records store.Store
	if cfg.DBName != "" {
		gdb, err := db.Open(cfg.DSN())
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
		}
		records = store.NewGormStore(gdb)
	} else {
		logrus.Warn("DB_NAME not set, records are kept in memory")
		records = store.NewMemoryStore()
	}

	// Serialize check-then-write sequences across instances when Redis is configured
	var locks utils.KeyLocker = utils.NewLocalLocker(cfg.LockWait)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		locks = utils.NewRedisLocker(redisClient, cfg.LockTTL, cfg.LockWait)
	} else {
		logrus.Warn("REDIS_ADDR not set, using in-process locks")
	}

	rules := integrity.NewEngine(records)
	hasher := utils.NewBcryptHasher(cfg.BcryptCost)

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

	api.RegisterRoutes(r, api.Deps{
		Store:       records,
		Employees:   service.NewAccountManager(service.AccountScope{Label: "employee", AllowedRoles: cfg.EmployeeRoles}, records, rules, hasher, locks),
		Users:       service.NewAccountManager(service.AccountScope{Label: "user", AllowedRoles: cfg.UserRoles}, records, rules, hasher, locks),
		Notes:       service.NewNoteManager(records, rules, locks),
		JWTSecret:   cfg.JWTSecret,
		ManageRoles: cfg.ManageRoles,
	})

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	// Start the server on port cfg.AppPort
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
