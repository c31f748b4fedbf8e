// Batch Report Lambda entry point, triggered by prospect-list uploads to S3.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"homebuyer-lead-engine/internal/config"
	"homebuyer-lead-engine/internal/handlers"
	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel, "homebuyer-batch-report")
	defer utils.Sync()

	services := handlers.NewServices(context.Background(), cfg)
	defer services.Close()

	handler := services.BatchHandler(models.ParseLocale(os.Getenv("BATCH_LOCALE")))

	lambda.Start(handler.Handle)
}
