//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"homebuyer-lead-engine/internal/handlers"
	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/engine"
	"homebuyer-lead-engine/internal/utils"
)

func main() {
	fmt.Println("=== Homebuyer Lead Engine - Local Test ===")
	fmt.Println()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	path := "data/sample_prospects.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	locale := models.ParseLocale(os.Getenv("BATCH_LOCALE"))

	file, err := os.Open(path)
	if err != nil {
		fmt.Printf("❌ Failed to open CSV: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("📖 Generating %s reports for %s...\n", locale, path)
	batch := handlers.NewBatchHandler(engine.New(engine.Options{}), nil, nil, locale)
	result, err := batch.Process(ctx, file, handlers.NewBatchID(path), locale)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ %s\n", result.Message)
	fmt.Println()
	for _, row := range result.Rows {
		if row.Report == nil {
			fmt.Printf("   line %d: ❌ %v\n", row.Line, row.Errors)
			continue
		}
		fmt.Printf("   line %d: %-28s price %s  payment %s  programs %v\n",
			row.Line,
			row.LeadType,
			utils.FormatCurrencyWhole(row.Report.EstimatedPrice),
			utils.FormatCurrency(row.Report.MonthlyPayment),
			row.Report.ProgramFit)
	}
}
