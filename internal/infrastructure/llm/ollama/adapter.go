package ollama

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/domain/entity"
	"agent-bridge/internal/infrastructure/llm/transport"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const DefaultServerURL = "http://localhost:11434"

var _ output.LLMPort = (*OllamaAdapter)(nil)

// generator is the part of langchaingo's model interface the adapter needs.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type OllamaAdapter struct {
	llm    generator
	model  string
	logger output.LoggerPort
}

type Config struct {
	Model     string
	ServerURL string
	Timeout   time.Duration
	Logger    output.LoggerPort
}

func DefaultConfig(model string) Config {
	return Config{
		Model:     model,
		ServerURL: DefaultServerURL,
		Timeout:   5 * time.Minute,
	}
}

func NewOllamaAdapter(cfg Config) (*OllamaAdapter, error) {
	if cfg.Model == "" {
		return nil, errors.New("ollama: model is required")
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}

	llm, err := ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithHTTPClient(transport.NewLoggingClient(cfg.Logger, cfg.Timeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &OllamaAdapter{
		llm:    llm,
		model:  cfg.Model,
		logger: cfg.Logger,
	}, nil
}

func (a *OllamaAdapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := a.llm.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama generate failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]
	if a.logger != nil {
		a.logger.Debug("Ollama response received",
			"model", a.model,
			"stopReason", choice.StopReason,
			"contentLen", len(choice.Content),
		)
	}

	return &output.ChatResponse{
		Message: entity.Message{
			Role:    entity.RoleAssistant,
			Content: choice.Content,
		},
	}, nil
}

// convertMessages keeps exactly one text part per message: the ollama client
// rejects messages with more than one.
func convertMessages(messages []entity.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		parts := []llms.ContentPart{llms.TextContent{Text: msg.Content}}
		for _, img := range msg.Images {
			parts = append(parts, llms.BinaryContent{
				MIMEType: img.MIMEType(),
				Data:     img.Data,
			})
		}
		result = append(result, llms.MessageContent{
			Role:  convertRole(msg.Role),
			Parts: parts,
		})
	}
	return result
}

func convertRole(role entity.MessageRole) llms.ChatMessageType {
	switch role {
	case entity.RoleSystem:
		return llms.ChatMessageTypeSystem
	case entity.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
