//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"homebuyer-lead-engine/internal/services/database"
)

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := ensureDatabase(ctx, databaseURL); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📡 Connecting to application database...")
	db, err := database.NewFromURL(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database successfully!")
	fmt.Println()

	fmt.Println("🚀 Applying schema...")
	if err := db.Migrate(ctx); err != nil {
		fmt.Printf("❌ Failed to apply schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Schema applied!")
	fmt.Println()

	fmt.Println("🔍 Verifying database setup...")
	counts, err := db.Leads().CountByLeadType(ctx)
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not count leads: %v\n", err)
	} else {
		var total int64
		for leadType, n := range counts {
			fmt.Printf("   %s: %d\n", leadType, n)
			total += n
		}
		fmt.Printf("   📦 Leads in database: %d\n", total)
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Test the connections: go run scripts/test_connection.go")
	fmt.Println("  2. Start the API: go run ./cmd/server")
}

// ensureDatabase creates the target database through the postgres
// maintenance database when it does not exist yet.
func ensureDatabase(ctx context.Context, databaseURL string) error {
	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	name := cfg.Database
	if name == "" || name == "postgres" {
		return nil
	}

	fmt.Println("📡 Connecting to PostgreSQL server...")
	cfg.Database = "postgres"
	adminConn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer adminConn.Close(ctx)

	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		fmt.Printf("✅ Database '%s' already exists\n", name)
		return nil
	}

	fmt.Printf("📦 Creating '%s' database...\n", name)
	if _, err := adminConn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	fmt.Printf("✅ Database '%s' created!\n", name)
	return nil
}
