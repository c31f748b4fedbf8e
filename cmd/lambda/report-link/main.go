// Report Link Lambda entry point: refreshes the download link of an
// archived report.
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

	_ = utils.InitLogger(cfg.LogLevel, "homebuyer-report-link")
	defer utils.Sync()

	services := handlers.NewServices(context.Background(), cfg)
	defer services.Close()

	lambda.Start(services.ReportLinkHandler().Handle)
}
