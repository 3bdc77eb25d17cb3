package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// Providers understood by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default model per provider.
var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-5-mini",
	ProviderAnthropic: "claude-3-5-sonnet-20241022",
	ProviderGemini:    "gemini-2.5-flash",
}

// TextGenerator turns a prompt into free text.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatGenerator adapts an eino chat model to TextGenerator.
type ChatGenerator struct {
	ChatModel model.BaseChatModel
	System    string
	Provider  string
	Model     string
}

// Options selects and configures a provider.
type Options struct {
	Provider  string
	APIKey    string
	Model     string
	MaxTokens int
	System    string
}

func NewOpenAIClient(ctx context.Context, key, modelName string) (*ChatGenerator, error) {
	if modelName == "" {
		modelName = defaultModels[ProviderOpenAI]
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: key,
		Model:  modelName,
	})
	if err != nil {
		log.Printf("Error creating OpenAI client: %v", err)
		return nil, err
	}
	return &ChatGenerator{ChatModel: cm, Provider: ProviderOpenAI, Model: modelName}, nil
}

func NewClaudeClient(ctx context.Context, key, modelName string, maxTokens int) (*ChatGenerator, error) {
	if modelName == "" {
		modelName = defaultModels[ProviderAnthropic]
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	cm, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    key,
		Model:     modelName,
		MaxTokens: maxTokens,
	})
	if err != nil {
		log.Printf("Error creating Claude client: %v", err)
		return nil, err
	}
	return &ChatGenerator{ChatModel: cm, Provider: ProviderAnthropic, Model: modelName}, nil
}

func NewGeminiClient(ctx context.Context, key, modelName string) (*ChatGenerator, error) {
	if modelName == "" {
		modelName = defaultModels[ProviderGemini]
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Printf("Error creating Gemini client: %v", err)
		return nil, err
	}
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: gc,
		Model:  modelName,
	})
	if err != nil {
		log.Printf("Error creating Gemini chat model: %v", err)
		return nil, err
	}
	return &ChatGenerator{ChatModel: cm, Provider: ProviderGemini, Model: modelName}, nil
}

// New builds a generator for opts.Provider.
func New(ctx context.Context, opts Options) (*ChatGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("llm api key is required")
	}
	var (
		gen *ChatGenerator
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderOpenAI, "":
		gen, err = NewOpenAIClient(ctx, opts.APIKey, opts.Model)
	case ProviderAnthropic, "claude":
		gen, err = NewClaudeClient(ctx, opts.APIKey, opts.Model, opts.MaxTokens)
	case ProviderGemini, "google":
		gen, err = NewGeminiClient(ctx, opts.APIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", opts.Provider)
	}
	if err != nil {
		return nil, err
	}
	gen.System = opts.System
	return gen, nil
}

// Complete sends a single user turn and returns the assistant text.
func (g *ChatGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.ChatModel == nil {
		return "", errors.New("chat model not initialized")
	}
	messages := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(g.System) != "" {
		messages = append(messages, schema.SystemMessage(g.System))
	}
	messages = append(messages, schema.UserMessage(prompt))

	out, err := g.ChatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", g.Provider, err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("%s returned no content", g.Provider)
	}
	return out.Content, nil
}
