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
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️  No .env file found, using environment variables")
	}

	fmt.Println("🔍 Testing connections...")
	fmt.Println()

	fmt.Println("1️⃣  Checking Environment Variables:")
	for _, name := range []string{
		"AWS_REGION", "S3_BUCKET", "DATABASE_URL", "SES_SENDER_EMAIL",
		"GEMINI_API_KEY", "CENSUS_API_KEY", "CRM_API_URL", "LEAD_WEBHOOK_URL",
		"REDIS_ADDR", "KAFKA_BROKERS",
	} {
		checkEnvVar(name)
	}
	fmt.Println()

	fmt.Println("2️⃣  Testing Database Connection:")
	testDatabaseConnection()
	fmt.Println()

	fmt.Println("3️⃣  Testing Redis Connection:")
	testRedisConnection()
	fmt.Println()

	fmt.Println("✅ Connection tests complete!")
}

func checkEnvVar(name string) {
	value := os.Getenv(name)
	if value == "" {
		fmt.Printf("   ❌ %s: NOT SET\n", name)
		return
	}

	// Mask sensitive values
	masked := value
	switch name {
	case "DATABASE_URL", "GEMINI_API_KEY", "CENSUS_API_KEY", "CRM_API_URL", "LEAD_WEBHOOK_URL":
		if len(value) > 12 {
			masked = value[:8] + "..." + value[len(value)-4:]
		}
	}
	fmt.Printf("   ✅ %s: %s\n", name, masked)
}

func testDatabaseConnection() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Println("   ❌ DATABASE_URL not set, skipping database test")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		fmt.Printf("   ❌ Database connection failed: %v\n", err)
		return
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = 'leads')
	`).Scan(&exists)
	if err != nil {
		fmt.Printf("   ❌ Database query failed: %v\n", err)
		return
	}

	fmt.Println("   ✅ Database connection successful!")
	if exists {
		fmt.Println("   📊 leads table found")
	} else {
		fmt.Println("   ⚠️  leads table missing, run: go run scripts/init_db.go")
	}
}

func testRedisConnection() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		fmt.Println("   ⏭️  REDIS_ADDR not set, census lookups use the in-memory cache")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Printf("   ❌ Redis ping failed: %v\n", err)
		return
	}
	fmt.Println("   ✅ Redis connection successful!")
}
