package intelligence

import (
	"context"
	"fmt"
	"math/rand"

	"bookline/utils"

	"go.uber.org/zap"
)

const chatPersona = "You are a friendly booking assistant for a business website. " +
	"Answer briefly and, when it fits, remind the visitor you can schedule a meeting for them.\n\nVisitor: %s"

// DefaultChatService replies with Gemini when an API key is configured and
// falls back to canned small talk otherwise.
type DefaultChatService struct {
	gemini *GeminiClient
}

// NewDefaultChatService builds the chat fallback. An empty apiKey or a failed
// client setup degrades to canned replies rather than failing startup.
func NewDefaultChatService(apiKey string) *DefaultChatService {
	svc := &DefaultChatService{}
	if apiKey == "" {
		return svc
	}
	client, err := NewGeminiClient(apiKey)
	if err != nil {
		utils.GetLogger().Warn("gemini unavailable, using canned chat replies", zap.Error(err))
		return svc
	}
	svc.gemini = client
	return svc
}

var cannedReplies = []string{
	"How can I help you today? I can also book a meeting for you — just ask.",
	"I'm here to assist. If you'd like to schedule a call, say the word.",
	"Thanks for your message! Would you like to set up a meeting?",
}

func (s *DefaultChatService) Reply(ctx context.Context, text string) (string, error) {
	if s.gemini != nil {
		reply, err := s.gemini.GenerateContent(ctx, fmt.Sprintf(chatPersona, text))
		if err == nil && reply != "" {
			return reply, nil
		}
		utils.GetLogger().Warn("gemini reply failed, falling back", zap.Error(err))
	}
	return cannedReplies[rand.Intn(len(cannedReplies))], nil
}
