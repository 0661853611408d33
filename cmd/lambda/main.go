package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/pixtag/service/internal/app"
	"github.com/pixtag/service/internal/config"
	"github.com/pixtag/service/internal/lambda"
	"github.com/pixtag/service/internal/logging"
)

func main() {
	logging.CreateLogger()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "err", err)
	}
	if cfg.IsProduction() {
		logging.UseJSON()
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		logging.Fatal("startup failed", "err", err)
	}

	awslambda.Start(lambda.NewRouter(a).Handle)
}
