package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ametelkin/tripline/internal/logger"
	"github.com/ametelkin/tripline/internal/models"
)

// LLMClient produces trip suggestions from a list of visited place names.
type LLMClient interface {
	SuggestTrips(ctx context.Context, visited []string) ([]models.Suggestion, error)
}

const suggestionSystemPrompt = "You are a travel assistant. " +
	"Given places the user has visited, suggest three new trips. " +
	`Respond with JSON only, in the form {"suggestions":[{"title":"...","description":"..."}]}.`

type openAIClient struct {
	client openai.Client
	model  openai.ChatModel
	log    *logger.Logger
}

func NewOpenAIClient(log *logger.Logger, apiKey string) LLMClient {
	return &openAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
		log:    log.With("service", "OpenAIClient"),
	}
}

func (c *openAIClient) SuggestTrips(ctx context.Context, visited []string) ([]models.Suggestion, error) {
	prompt := fmt.Sprintf("The user has visited: %s. Suggest three new trips.",
		strings.Join(visited, ", "))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(suggestionSystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var parsed struct {
		Suggestions []models.Suggestion `json:"suggestions"`
	}
	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return parsed.Suggestions, nil
}

// stripCodeFence removes a ```json ... ``` wrapper if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
