package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// CompletionRequest is the contract with the text-completion collaborator.
// All fields are caller-configurable.
type CompletionRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	ModelID     string  `json:"model_id"`
}

func (x *CompletionRequest) Validate() error {
	if x.Prompt == "" {
		return goerr.Wrap(types.ErrValidationFailed, "prompt is empty")
	}
	if x.MaxTokens <= 0 {
		return goerr.Wrap(types.ErrValidationFailed, "max_tokens must be positive")
	}
	if x.Temperature < 0 || x.Temperature > 1 {
		return goerr.Wrap(types.ErrValidationFailed, "temperature out of range", goerr.V("value", x.Temperature))
	}
	if x.ModelID == "" {
		return goerr.Wrap(types.ErrValidationFailed, "model_id is empty")
	}
	return nil
}

type CompletionResponse struct {
	Text string `json:"text"`
}
