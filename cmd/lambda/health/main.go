// Health Check Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"homebuyer-lead-engine/internal/config"
	"homebuyer-lead-engine/internal/handlers"
	"homebuyer-lead-engine/internal/utils"
)

func main() {
	_ = utils.InitLogger("info", "homebuyer-health")
	defer utils.Sync()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	services := handlers.NewServices(context.Background(), cfg)
	defer services.Close()

	handler := handlers.NewHealthHandler(services.HealthOptions())

	lambda.Start(handler.Handle)
}
