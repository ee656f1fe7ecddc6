package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/joho/godotenv"

	"vto/internal/addressing"
	"vto/internal/dispatch"
	"vto/internal/http/handlers"
	httpapi "vto/internal/http/httpapi"
	"vto/internal/infra"
	"vto/internal/infra/geoip"
	"vto/internal/invoke"
	"vto/internal/ledger"
	"vto/internal/middleware"
	"vto/internal/providers/bedrock"
	"vto/internal/providers/garment"
	"vto/internal/providers/prompt"
	"vto/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx := context.Background()
	awsCfg, err := infra.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		logger.Fatal().Err(err).Msg("aws config failed")
	}

	store, err := newStore(cfg, awsCfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	// Ledger is optional; without DATABASE_URL requests are only logged.
	var recorder dispatch.Recorder
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if dbpool != nil {
		defer dbpool.Close()
		l := ledger.New(infra.NewSQLRunner(dbpool, logger), &logger)
		if err := l.EnsureSchema(ctx); err != nil {
			logger.Warn().Err(err).Msg("dispatch ledger schema check failed")
		}
		recorder = l
	}

	aggregator := dispatch.NewAggregator(dispatch.AggregatorOptions{
		Invoker:       invoke.NewLambdaInvoker(awslambda.NewFromConfig(awsCfg), &logger),
		FunctionName:  cfg.GenFunctionName,
		SubmitTimeout: cfg.SubmitTimeout,
		Logger:        &logger,
	})

	bedrockCfg := awsCfg.Copy()
	bedrockCfg.Region = cfg.BedrockRegion
	models, err := bedrock.NewClient(bedrock.Options{
		Runtime: bedrockruntime.NewFromConfig(bedrockCfg),
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure bedrock")
	}
	enhancer, err := prompt.NewBedrockEnhancer(prompt.Options{Model: models, Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure prompt enhancer")
	}
	classifier, err := garment.NewBedrockClassifier(garment.Options{Model: models, Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure garment classifier")
	}

	var countryLookup middleware.CountryLookup
	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if geo != nil {
		defer geo.Close()
		countryLookup = geo.CountryCode
	}

	app := handlers.NewApp(handlers.Options{
		Config:     *cfg,
		Logger:     &logger,
		Store:      store,
		Dispatcher: dispatch.NewService(aggregator, recorder, &logger),
		Addresser:  addressing.New(),
		Classifier: classifier,
		Enhancer:   enhancer,
	})

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  countryLookup,
		Logger:         logger,
	})

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(httpadapter.New(router).ProxyWithContext)
		return
	}

	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newStore(cfg *infra.Config, awsCfg aws.Config, logger *infra.Logger) (storage.Store, error) {
	if cfg.StoragePath != "" {
		return storage.NewFileStore(cfg.StoragePath)
	}
	return storage.NewS3StoreFromClient(s3.NewFromConfig(awsCfg), cfg.Bucket, logger)
}
