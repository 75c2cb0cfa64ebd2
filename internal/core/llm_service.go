package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"edusense-backend/internal/store"
)

const defaultChatModelName = "gemini-1.5-flash-latest"

// Sampling settings are fixed; callers don't tune generation per request.
const (
	generationTemperature     = float32(0.7)
	generationMaxOutputTokens = int32(400)
)

// LLMService is the Gemini-backed Generator.
type LLMService struct {
	client    *genai.Client
	modelName string
}

func NewLLMService(ctx context.Context, apiKey, modelName string) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if modelName == "" {
		modelName = defaultChatModelName
	}
	return &LLMService{
		client:    client,
		modelName: modelName,
	}, nil
}

func (s *LLMService) Close() error {
	return s.client.Close()
}

func (s *LLMService) Generate(ctx context.Context, systemInstruction string, history []Turn, message string) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	temperature := generationTemperature
	maxTokens := generationMaxOutputTokens
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temperature,
		MaxOutputTokens: &maxTokens,
	}

	session := model.StartChat()
	session.History = providerHistory(history)

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini SendMessage failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			reply.WriteString(string(txt))
		}
	}
	if reply.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text parts")
	}
	return reply.String(), nil
}

// providerHistory maps stored turns to the Gemini content format. The API
// names the assistant role "model".
func providerHistory(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == store.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return contents
}
