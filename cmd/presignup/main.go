package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"vto/internal/infra"
	"vto/internal/signup"
)

func main() {
	cfg := infra.LoadSignUpConfig()
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	gate := signup.NewGate(cfg.AllowedSignUpDomains, &logger)
	lambda.Start(gate.Handle)
}
