package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/complior/pkg/infra/bedrock"
	"github.com/secmon-lab/complior/pkg/usecase"
)

// Bedrock configures the AI analysis collaborator.
type Bedrock struct {
	region      string
	modelID     string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
	retryLimit  uint64
}

func (x *Bedrock) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bedrock-region",
			Usage:       "AWS region of the Bedrock runtime",
			Category:    "Bedrock",
			Sources:     cli.EnvVars("COMPLIOR_BEDROCK_REGION"),
			Destination: &x.region,
		},
		&cli.StringFlag{
			Name:        "bedrock-model-id",
			Usage:       "Model ID for AI analysis",
			Category:    "Bedrock",
			Sources:     cli.EnvVars("COMPLIOR_BEDROCK_MODEL_ID"),
			Value:       "anthropic.claude-3-5-sonnet-20241022-v2:0",
			Destination: &x.modelID,
		},
		&cli.Int64Flag{
			Name:        "bedrock-max-tokens",
			Usage:       "Response token budget per analysis call",
			Category:    "Bedrock",
			Sources:     cli.EnvVars("COMPLIOR_BEDROCK_MAX_TOKENS"),
			Value:       1024,
			Destination: &x.maxTokens,
		},
		&cli.FloatFlag{
			Name:        "bedrock-temperature",
			Usage:       "Sampling temperature [0..1]",
			Category:    "Bedrock",
			Sources:     cli.EnvVars("COMPLIOR_BEDROCK_TEMPERATURE"),
			Value:       0,
			Destination: &x.temperature,
		},
		&cli.DurationFlag{
			Name:        "bedrock-timeout",
			Usage:       "Timeout per analysis call",
			Category:    "Bedrock",
			Sources:     cli.EnvVars("COMPLIOR_BEDROCK_TIMEOUT"),
			Value:       30 * time.Second,
			Destination: &x.timeout,
		},
		&cli.Uint64Flag{
			Name:        "bedrock-retry-limit",
			Usage:       "Retries per analysis call before downgrading the control",
			Category:    "Bedrock",
			Sources:     cli.EnvVars("COMPLIOR_BEDROCK_RETRY_LIMIT"),
			Value:       2,
			Destination: &x.retryLimit,
		},
	}
}

func (x *Bedrock) NewClient(ctx context.Context) (*bedrock.Client, error) {
	return bedrock.New(ctx, x.region)
}

// UseCaseOptions maps the configuration onto the orchestrator.
func (x *Bedrock) UseCaseOptions() []usecase.Option {
	return []usecase.Option{
		usecase.WithCompletionModel(x.modelID, int(x.maxTokens), x.temperature),
		usecase.WithAITimeout(x.timeout),
		usecase.WithAIRetryLimit(x.retryLimit),
	}
}

func (x *Bedrock) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("region", x.region),
		slog.String("modelID", x.modelID),
		slog.Int64("maxTokens", x.maxTokens),
		slog.Float64("temperature", x.temperature),
		slog.Duration("timeout", x.timeout),
		slog.Uint64("retryLimit", x.retryLimit),
	)
}
