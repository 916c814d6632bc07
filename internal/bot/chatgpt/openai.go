package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiGenerator adapts the OpenAI chat completions API to the eino
// generator shape, emitting the same model callbacks as the eino providers.
type openaiGenerator struct {
	completions completer
	model       string
	maxTokens   int
	temperature float32
}

type completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

func newOpenAIGenerator(cfg Config) *openaiGenerator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &openaiGenerator{
		completions: &client.Chat.Completions,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (g *openaiGenerator) Generate(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	ctx = callbacks.OnStart(ctx, &einomodel.CallbackInput{
		Messages: input,
		Config: &einomodel.Config{
			Model:       g.model,
			MaxTokens:   g.maxTokens,
			Temperature: g.temperature,
		},
	})

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Messages:    toOpenAIMessages(input),
		Temperature: openai.Float(float64(g.temperature)),
	}
	if g.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(g.maxTokens))
	}

	resp, err := g.completions.New(ctx, params)
	if err != nil {
		err = classifyOpenAIError(err)
		callbacks.OnError(ctx, err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		err = errors.New("no choices returned")
		callbacks.OnError(ctx, err)
		return nil, err
	}

	choice := resp.Choices[0]
	usage := &schema.TokenUsage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	out := &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Message.Content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: choice.FinishReason,
			Usage:        usage,
		},
	}

	callbacks.OnEnd(ctx, &einomodel.CallbackOutput{
		Message: out,
		TokenUsage: &einomodel.TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
	})
	return out, nil
}

func toOpenAIMessages(input []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(input))
	for _, m := range input {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case schema.Assistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return msgs
}

// classifyOpenAIError rewrites throttling and auth failures into the
// messages the responder watches for.
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("too many requests, please slow down: %w", err)
	case http.StatusUnauthorized:
		return fmt.Errorf("your authentication token has expired: %w", err)
	}
	return err
}
