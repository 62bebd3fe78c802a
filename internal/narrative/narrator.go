// Package narrative writes the prose that accompanies a recommendation set.
// The numbers always come from the calculator; a narrator only explains them.
package narrative

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/wonny/magicformula/internal/contracts"
	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/logger"
)

// ErrNotConfigured is returned when no chat model credentials are set
var ErrNotConfigured = errors.New("narrator not configured")

// LLMNarrator asks a chat model for the narrative
type LLMNarrator struct {
	model  model.BaseChatModel
	logger *logger.Logger
}

// NewLLMNarrator wraps any eino chat model
func NewLLMNarrator(m model.BaseChatModel, log *logger.Logger) *LLMNarrator {
	return &LLMNarrator{
		model:  m,
		logger: log.WithModule("narrator"),
	}
}

// NewOpenAINarrator builds the production narrator from config
func NewOpenAINarrator(ctx context.Context, cfg *config.Config, log *logger.Logger) (*LLMNarrator, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, ErrNotConfigured
	}

	maxTokens := cfg.OpenAI.MaxTokens
	temperature := float32(cfg.OpenAI.Temperature)

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return NewLLMNarrator(chatModel, log), nil
}

// Narrate implements contracts.Narrator
func (n *LLMNarrator) Narrate(ctx context.Context, req contracts.NarrativeRequest) (*contracts.Narrative, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildUserPrompt(req)),
	}

	msg, err := n.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate narrative: %w: %w", err, contracts.ErrUpstreamUnavailable)
	}

	narrative, err := parseNarrative(msg.Content)
	if err != nil {
		n.logger.WithError(err).WithField("content_length", len(msg.Content)).Warn("Unparseable narrative")
		return nil, fmt.Errorf("parse narrative: %w: %w", err, contracts.ErrUpstreamUnavailable)
	}

	n.logger.WithFields(map[string]interface{}{
		"sector": req.Sector,
		"picks":  len(req.Picks),
		"notes":  len(narrative.Recommendations),
	}).Info("Narrative generated")

	return narrative, nil
}
