package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"estate-chat/handler"
	"estate-chat/internal/config"
	"estate-chat/internal/integrations/openai"
	"estate-chat/internal/integrations/paramstore"
	"estate-chat/internal/metrics"
	"estate-chat/internal/usecase"
)

// buildHandler wires the chat endpoint. The AWS SDK is only configured when
// the credential lives in Parameter Store.
func buildHandler(ctx context.Context, a *app, m *metrics.Metrics) (*handler.Handler, error) {
	var getter config.SecretGetter
	if a.cfg.APIKey == "" && a.cfg.APIKeyParameter != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		store, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, fmt.Errorf("create SSM client: %w", err)
		}
		getter = store
	}

	apiKey, err := config.ResolveAPIKey(ctx, a.cfg, getter)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		a.logger.Warn("no provider API key configured; chat requests will fail",
			"env", config.EnvAPIKey, "parameter", a.cfg.APIKeyParameter)
	}

	llm, err := openai.NewClient(openai.WithBaseURL(a.cfg.ProviderBaseURL))
	if err != nil {
		return nil, fmt.Errorf("create provider client: %w", err)
	}

	opts := []usecase.ServiceOption{usecase.WithLogger(a.logger)}
	if m != nil {
		opts = append(opts, usecase.WithRecorder(m))
	}
	svc, err := usecase.NewChatService(llm, apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("create chat service: %w", err)
	}

	h, err := handler.NewHandler(svc, handler.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("create handler: %w", err)
	}
	return h, nil
}
