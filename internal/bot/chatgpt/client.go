package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/chatgpt-twitter-bot/server/internal/bot/observers"
	logx "github.com/chatgpt-twitter-bot/server/pkg/logger"
)

var ErrEmptyResponse = errors.New("ChatGPT received an empty response")

var atMention = regexp.MustCompile(`(^|\W)@(\w+)`)

// generator is the part of an eino chat model the client needs.
type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// Client answers single prompts with no conversation history.
type Client struct {
	gen     generator
	model   string
	system  string
	runInfo *callbacks.RunInfo
}

// New builds a client for the configured provider. handle is used in the
// system prompt when it is enabled.
func New(ctx context.Context, cfg Config, handle string) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		gen generator
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		gen = newOpenAIGenerator(cfg)
	default:
		gen, err = newGeminiGenerator(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	system := ""
	if cfg.SystemPromptEnabled {
		if system, err = RenderSystem(ctx, handle); err != nil {
			return nil, err
		}
	}
	return newClient(gen, strings.ToLower(cfg.Provider), cfg.Model, system), nil
}

func newClient(gen generator, provider, model, system string) *Client {
	return &Client{
		gen:    gen,
		model:  model,
		system: system,
		runInfo: &callbacks.RunInfo{
			Name:      model,
			Type:      provider,
			Component: components.ComponentOfChatModel,
		},
	}
}

// SendMessage sends prompt and returns the cleaned up reply.
func (c *Client) SendMessage(ctx context.Context, prompt string) (string, error) {
	msgs := make([]*schema.Message, 0, 2)
	if c.system != "" {
		msgs = append(msgs, schema.SystemMessage(c.system))
	}
	msgs = append(msgs, schema.UserMessage(prompt))

	cctx := callbacks.InitCallbacks(ctx, c.runInfo, observers.NewModelCallbacks())
	out, err := c.gen.Generate(cctx, msgs)
	if err != nil {
		return "", fmt.Errorf("ChatGPT error: %w", err)
	}
	if out == nil {
		return "", ErrEmptyResponse
	}
	c.logUsage(ctx, out)

	response := strings.TrimSpace(stripAtMentions(out.Content))
	if response == "" {
		return "", ErrEmptyResponse
	}
	return response, nil
}

func (c *Client) logUsage(ctx context.Context, out *schema.Message) {
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	inC, outC, totalC := ComputeCost(usage, ResolvePricing(c.model))
	logx.Ctx(ctx).Debug().
		Str("model", c.model).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("usage")
}

// stripAtMentions removes the @ from @user tokens so replies never notify
// other accounts.
func stripAtMentions(text string) string {
	return atMention.ReplaceAllString(text, "${1}${2}")
}
