package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/kavinmuthu/scamlure/internal/config"
	"github.com/kavinmuthu/scamlure/internal/model/chat"
)

// Service generates persona replies through an Ark-backed chat chain.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the prompt/model chain from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, chain: runnable}, nil
}

// Generate runs the chain for one turn.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	input := map[string]any{
		"system":  req.System,
		"history": historyMessages(req.History),
		"query":   req.Query,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	log.Printf("[ai] generated reply, length=%d", len(response.Content))
	return response.Content, nil
}

// historyMessages converts stored turns into chain history. The scammer
// plays the user role; our replies are the assistant's.
func historyMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Sender {
		case chat.SenderScammer:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderUser:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}

	return history
}
