package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/BusinessThatWorks/Salasar/internal/config"
	"github.com/BusinessThatWorks/Salasar/internal/database"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/migrate/main.go [up|down|status|seed-admin <username> <password>]")
		os.Exit(1)
	}

	command := os.Args[1]

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Create migrator
	migrator := database.NewMigrator(db)

	switch command {
	case "up":
		fmt.Println("Running migrations...")
		if err := migrator.Up(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations completed successfully")

	case "down":
		fmt.Println("Rolling back migrations...")
		if err := migrator.Down(); err != nil {
			log.Fatalf("Failed to rollback migrations: %v", err)
		}
		fmt.Println("Migrations rolled back successfully")

	case "status":
		fmt.Println("Checking migration status...")
		// Get database connection stats
		stats, err := db.GetConnectionStats()
		if err != nil {
			log.Fatalf("Failed to get connection stats: %v", err)
		}

		fmt.Printf("Database connection status:\n")
		fmt.Printf("  Max Open Connections: %d\n", stats.MaxOpenConnections)
		fmt.Printf("  Open Connections: %d\n", stats.OpenConnections)
		fmt.Printf("  In Use: %d\n", stats.InUse)
		fmt.Printf("  Idle: %d\n", stats.Idle)

		// Check if tables exist
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get underlying sql.DB: %v", err)
		}

		var count int
		err = sqlDB.QueryRow("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE'").Scan(&count)
		if err != nil {
			log.Fatalf("Failed to query table count: %v", err)
		}

		fmt.Printf("  Tables in database: %d\n", count)

		if count > 0 {
			fmt.Println("Database appears to be properly migrated")
		} else {
			fmt.Println("No tables found - migrations may need to be run")
		}

	case "seed-admin":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run cmd/migrate/main.go seed-admin <username> <password>")
			os.Exit(1)
		}
		username, password := os.Args[2], os.Args[3]

		if err := migrator.Up(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		ctx := context.Background()
		userRepo := repositories.NewUserRepository(db)

		if existing, err := userRepo.GetByUsername(ctx, username); err == nil && existing != nil {
			log.Fatalf("User %q already exists", username)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		user := &models.User{
			Username:     username,
			Email:        fmt.Sprintf("%s@salasar.local", username),
			FullName:     username,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}

		fmt.Printf("Admin user %q created with ID %s\n", username, user.ID)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Available commands: up, down, status, seed-admin")
		os.Exit(1)
	}
}
