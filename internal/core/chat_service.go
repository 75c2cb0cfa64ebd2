package core

import (
	"context"
	"fmt"
	"strings"

	"edusense-backend/internal/logger"
	"edusense-backend/internal/store"
)

// historyWindow bounds how many stored messages are replayed to the
// provider per request.
const historyWindow = 8

const systemPrompt = "You are EduSense, an emotion-aware learning assistant. " +
	"Your goal is to teach clearly and adaptively. " +
	"Tone rules by emotion: sad=gently encouraging; confused=clear step-by-step with examples; " +
	"angry=calm and concise; happy=enthusiastic and challenging; neutral=friendly and helpful. " +
	"Always be supportive, focus on pedagogy (Socratic questions, bite-sized steps), and avoid long tangents."

// Turn is one role/content pair of conversation history handed to a
// Generator.
type Turn struct {
	Role    string
	Content string
}

// Generator produces a reply from an external language-model provider.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, history []Turn, message string) (string, error)
}

// ChatService persists conversation turns and produces replies, delegating
// to the configured Generator when one exists and degrading to a templated
// reply when it doesn't or when it fails. Generator errors never reach the
// caller.
type ChatService struct {
	store     store.Store
	generator Generator // nil means fallback replies only
	log       *logger.Logger
}

func NewChatService(st store.Store, generator Generator, log *logger.Logger) *ChatService {
	return &ChatService{
		store:     st,
		generator: generator,
		log:       log,
	}
}

// Chat stores the user's message, generates a reply, stores it, and returns
// it. The user message is persisted before generation so it is part of
// history even if generation fails. Only storage errors are returned.
func (s *ChatService) Chat(ctx context.Context, userID, message, emotionHint string) (string, error) {
	userMsg := &store.ChatMessage{
		UserID:  userID,
		Role:    store.RoleUser,
		Content: message,
	}
	if emotionHint != "" {
		userMsg.EmotionContext = &emotionHint
	}
	if _, err := s.store.CreateChatMessage(ctx, userMsg); err != nil {
		return "", fmt.Errorf("failed to store user message: %w", err)
	}

	reply := s.generateReply(ctx, userID, message, emotionHint)

	assistantMsg := &store.ChatMessage{
		UserID:  userID,
		Role:    store.RoleAssistant,
		Content: reply,
	}
	if emotionHint != "" {
		assistantMsg.EmotionContext = &emotionHint
	}
	if _, err := s.store.CreateChatMessage(ctx, assistantMsg); err != nil {
		return "", fmt.Errorf("failed to store assistant message: %w", err)
	}

	return reply, nil
}

func (s *ChatService) generateReply(ctx context.Context, userID, message, emotionHint string) string {
	if s.generator == nil {
		return fallbackReply(message, emotionHint)
	}

	instruction := systemPrompt
	if emotionHint != "" {
		instruction += fmt.Sprintf(" Current learner emotional state: %s. Adjust tone accordingly.", emotionHint)
	}

	history := s.recentHistory(ctx, userID)

	reply, err := s.generator.Generate(ctx, instruction, history, message)
	if err != nil {
		s.log.Warn("llm generation failed, using fallback reply", "user_id", userID, "error", err)
		return fallbackReply(message, emotionHint)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		s.log.Warn("llm returned an empty reply, using fallback", "user_id", userID)
		return fallbackReply(message, emotionHint)
	}
	return reply
}

// recentHistory returns the user's last turns oldest-first. The incoming
// message was already persisted, so it appears as the final turn. History
// failures degrade to an empty window rather than failing the chat.
func (s *ChatService) recentHistory(ctx context.Context, userID string) []Turn {
	messages, err := s.store.RecentChatMessages(ctx, userID, historyWindow)
	if err != nil {
		s.log.Warn("failed to load chat history, continuing without it", "user_id", userID, "error", err)
		return nil
	}
	history := make([]Turn, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		history = append(history, Turn{Role: messages[i].Role, Content: messages[i].Content})
	}
	return history
}

var fallbackTones = map[string]string{
	"sad":      "gentle and encouraging",
	"confused": "clear and step-by-step",
	"angry":    "calm and concise",
	"happy":    "enthusiastic and challenging",
}

func fallbackReply(message, emotionHint string) string {
	tone, ok := fallbackTones[emotionHint]
	if !ok {
		tone = "friendly and helpful"
	}
	return fmt.Sprintf("In a %s tone: I hear you said: '%s'. Let's work through this together.", tone, message)
}
