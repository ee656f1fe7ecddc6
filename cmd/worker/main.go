package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"vto/internal/infra"
	"vto/internal/providers/bedrock"
	"vto/internal/storage"
	"vto/internal/translate"
	"vto/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := infra.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: aws config failed")
	}

	var store storage.Store
	if cfg.StoragePath != "" {
		store, err = storage.NewFileStore(cfg.StoragePath)
	} else {
		store, err = storage.NewS3StoreFromClient(s3.NewFromConfig(awsCfg), cfg.Bucket, &logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	bedrockCfg := awsCfg.Copy()
	bedrockCfg.Region = cfg.BedrockRegion
	client, err := bedrock.NewClient(bedrock.Options{
		Runtime: bedrockruntime.NewFromConfig(bedrockCfg),
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure bedrock")
	}

	handler, err := worker.NewHandler(worker.Options{
		Store:      store,
		Model:      client,
		Translator: translate.NewBedrock(translate.Options{Model: client, Logger: &logger}),
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure handler")
	}

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler.Handle)
		return
	}

	// Outside Lambda, run a single event read from the file argument or stdin.
	in := io.Reader(os.Stdin)
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: open event file")
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: read event")
	}
	resp, _ := handler.Handle(ctx, json.RawMessage(raw))
	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(resp); err != nil {
		logger.Fatal().Err(err).Msg("worker: write response")
	}
}
