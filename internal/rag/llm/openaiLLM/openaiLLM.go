package openaiLLM

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/rag/llm"
	"github.com/intigra/ragapi/pkg/logger_i"
)

type llmClient struct {
	api       openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

// GetOpenAIClient is the alternate generation provider, selected when the
// model provider is set to openai.
func GetOpenAIClient(modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		openaiClient = &llmClient{
			api:       openai.NewClient(option.WithAPIKey(apikey)),
			modelName: modelName,
		}
		logger.Info("OpenAI client created", "model", modelName)
	})
	return openaiClient
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	contextText := strings.Join(matches, "\n")
	userPrompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s", contextText, userQuery)

	result, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.SystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       openai.ChatModel(c.modelName),
		Temperature: openai.Float(float64(config.ModelTemperature)),
		TopP:        openai.Float(float64(config.ModelTopP)),
	})
	if err != nil {
		log.Error("Error generating answer from OpenAI", "error", err.Error())
		return "", apperrors.Wrap(apperrors.ErrServiceUnavailable, "openai generation", err)
	}
	if len(result.Choices) == 0 {
		return "", apperrors.Wrap(apperrors.ErrServiceUnavailable, "openai returned no choices", nil)
	}
	return result.Choices[0].Message.Content, nil
}
