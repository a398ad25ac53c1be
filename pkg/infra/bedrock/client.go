package bedrock

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
)

// Client calls the Bedrock runtime as the text-completion collaborator.
// The model, token budget and temperature come from the request; the
// client only owns the connection.
type Client struct {
	api *bedrockruntime.Client
}

var _ interfaces.TextCompleter = (*Client)(nil)

func New(ctx context.Context, region string) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config")
	}

	return &Client{
		api: bedrockruntime.NewFromConfig(awsCfg),
	}, nil
}

// invokeBody is the Anthropic messages request accepted by Bedrock.
type invokeBody struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	Messages         []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type invokeResponse struct {
	Content []contentBlock `json:"content"`
}

func (x *Client) Complete(ctx context.Context, req *model.CompletionRequest) (*model.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(&invokeBody{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
		Messages: []message{
			{
				Role: "user",
				Content: []contentBlock{
					{Type: "text", Text: req.Prompt},
				},
			},
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal completion request")
	}

	out, err := x.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(req.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to invoke model", goerr.V("modelID", req.ModelID))
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal completion response")
	}

	var texts []string
	for _, c := range resp.Content {
		if c.Type == "text" {
			texts = append(texts, c.Text)
		}
	}

	return &model.CompletionResponse{
		Text: strings.Join(texts, "\n"),
	}, nil
}
