package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ehb/ragchat/config"
	"github.com/ehb/ragchat/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

const (
	systemPrompt      = "You are a helpful assistant who answers questions based on the provided dataset."
	NoResponseMessage = "No response from AI."
)

// ErrChat is returned for every provider or transport failure.
var ErrChat = errors.New("chat completion failed")

// ChatService forwards user messages to an Azure OpenAI deployment grounded
// on an Azure AI Search index.
type ChatService struct {
	client     openai.Client
	deployment string
	dataSource map[string]any
}

// NewChatService builds the provider client. Extra options are appended
// after the defaults and may override them.
func NewChatService(ai config.AIConfig, search config.SearchConfig, opts ...option.RequestOption) *ChatService {
	clientOpts := []option.RequestOption{
		azure.WithEndpoint(ai.Endpoint, ai.APIVersion),
		azure.WithAPIKey(ai.APIKey),
		option.WithMaxRetries(0),
	}
	clientOpts = append(clientOpts, opts...)

	return &ChatService{
		client:     openai.NewClient(clientOpts...),
		deployment: ai.Deployment,
		dataSource: map[string]any{
			"type": "azure_search",
			"parameters": map[string]any{
				"endpoint":   search.Endpoint,
				"index_name": search.Index,
				"authentication": map[string]any{
					"type": "api_key",
					"key":  search.APIKey,
				},
			},
		},
	}
}

// Chat sends message after the fixed system prompt and returns the first
// choice's text, or NoResponseMessage when the provider returns no choices.
func (s *ChatService) Chat(ctx context.Context, message string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(message),
		},
	}

	resp, err := s.client.Chat.Completions.New(ctx, params,
		option.WithJSONSet("data_sources", []any{s.dataSource}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrChat, err)
	}

	logger.Debugf("chat completion %s returned %d choices", resp.ID, len(resp.Choices))
	if len(resp.Choices) == 0 {
		return NoResponseMessage, nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
