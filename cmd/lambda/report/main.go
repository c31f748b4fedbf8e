// Report Lambda entry point: wizard answers in, report out.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"homebuyer-lead-engine/internal/config"
	"homebuyer-lead-engine/internal/handlers"
	"homebuyer-lead-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel, "homebuyer-report")
	defer utils.Sync()

	services := handlers.NewServices(context.Background(), cfg)
	defer services.Close()

	lambda.Start(services.ReportHandler().Handle)
}
