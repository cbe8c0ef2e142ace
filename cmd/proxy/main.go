// Command proxy is the Lambda entry point that relays CSV payloads to the
// hosted inference endpoint.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"

	"github.com/DebasishMaji/ecommerce-personalization/internal/config"
	"github.com/DebasishMaji/ecommerce-personalization/internal/logging"
	"github.com/DebasishMaji/ecommerce-personalization/internal/proxy"
)

func main() {
	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, logging.FormatJSON, cfg.SlogLevel())
	if cfg.Proxy.EndpointName == "" {
		logger.Error("ENDPOINT_NAME is not set")
		os.Exit(1)
	}

	// One client per process, reused across warm invocations.
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}
	runtime := sagemakerruntime.NewFromConfig(awsCfg)

	p := proxy.New(runtime, cfg.Proxy.EndpointName, cfg.Proxy.ContentType, logger)
	lambda.Start(p.Handle)
}
