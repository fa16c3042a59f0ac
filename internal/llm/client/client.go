package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"codefactory/internal/apperrors"
	"codefactory/internal/llm/fileset"
	"codefactory/internal/models"
)

const claudeMaxTokens = 8192

// Options selects the hosted model behind the client.
type Options struct {
	Provider string // openai | anthropic | gemini
	Model    string
	APIKey   string
}

// LLMClient sends a single completion request per generation. The model's
// output is untrusted: file paths in the parsed result are validated by the
// source control layer before anything touches disk.
type LLMClient struct {
	chatModel model.BaseChatModel
	provider  string
	modelName string
}

func New(ctx context.Context, opts Options) (*LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key for %s is not configured", provider)
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch provider {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey: opts.APIKey,
			Model:  opts.Model,
		})
	case "anthropic":
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    opts.APIKey,
			Model:     opts.Model,
			MaxTokens: claudeMaxTokens,
		})
	case "gemini":
		var genaiClient *genai.Client
		genaiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  opts.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err == nil {
			chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
				Client: genaiClient,
				Model:  opts.Model,
			})
		}
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", provider, err)
	}

	return &LLMClient{chatModel: chatModel, provider: provider, modelName: opts.Model}, nil
}

// Complete runs one completion and returns the assistant text.
func (c *LLMClient) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	out, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindGenerationProvider, err,
			"%s completion failed (model %s)", c.provider, c.modelName)
	}
	if out == nil || out.Content == "" {
		return "", apperrors.New(apperrors.KindGenerationProvider,
			"%s returned an empty completion (model %s)", c.provider, c.modelName)
	}
	return out.Content, nil
}

// Generate runs one completion and parses the response into a file set.
// Provider failures and parse failures surface as distinct error kinds so the
// orchestrator can report them differently.
func (c *LLMClient) Generate(ctx context.Context, system, user string) (models.FileSet, error) {
	raw, err := c.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	return fileset.Parse(raw)
}
