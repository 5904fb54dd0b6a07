// Package classifier adapts an OpenAI-compatible chat completion endpoint
// into the agent's IntentClassifier contract. Model output is untrusted:
// anything missing, malformed, or unparseable degrades to a safe fallback
// decision instead of an error, so the orchestrator never crashes on it.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
	promptx "github.com/bloomcart/commerce-agent/agent/prompt"
)

// FallbackMessage is the generic clarification shown whenever the model's
// answer could not be used.
const FallbackMessage = "I'm not quite sure what you're looking for. Could you tell me a bit more about what you'd like to order?"

type Config struct {
	BaseURL             string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey              string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model               string        `envconfig:"MODEL" split_words:"true" required:"true"`
	Temperature         float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	MaxCompletionTokens int64         `envconfig:"MAX_COMPLETION_TOKENS" split_words:"true" default:"500"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("classifier api key is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("classifier model is required")
	}
	return nil
}

type Classifier struct {
	client       openai.Client
	model        string
	temperature  float64
	maxTokens    int64
	systemPrompt string
}

var _ contractx.IntentClassifier = (*Classifier)(nil)

func New(cfg Config, opts ...option.RequestOption) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	clientOpts = append(clientOpts, opts...)

	return &Classifier{
		client:       openai.NewClient(clientOpts...),
		model:        strings.TrimSpace(cfg.Model),
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxCompletionTokens,
		systemPrompt: promptx.Classifier(),
	}, nil
}

type classifierPayload struct {
	Query   string              `json:"query"`
	Catalog []contractx.Product `json:"catalog"`
}

type classifierOutput struct {
	Intent    string  `json:"intent"`
	ProductID *string `json:"product_id"`
	Message   string  `json:"message"`
}

// Classify runs one completion and parses the decision out of its content.
// The returned error is non-nil only for context cancellation; every other
// failure mode falls back to IntentOther with the generic message.
func (c *Classifier) Classify(ctx context.Context, query string, catalog []contractx.Product) (contractx.IntentDecision, error) {
	payload, err := json.Marshal(classifierPayload{Query: query, Catalog: catalog})
	if err != nil {
		return contractx.IntentDecision{}, fmt.Errorf("marshal classifier payload: %w", err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(string(payload)),
		},
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		if ctx.Err() != nil {
			return contractx.IntentDecision{}, ctx.Err()
		}
		log.Warn().Err(err).Msg("classifier invoke failed, using fallback decision")
		return fallbackDecision(), nil
	}

	if len(resp.Choices) == 0 {
		log.Warn().Msg("classifier returned no choices, using fallback decision")
		return fallbackDecision(), nil
	}

	decision, ok := parseDecision(resp.Choices[0].Message.Content)
	if !ok {
		log.Warn().Str("model", c.model).Msg("classifier output unparseable, using fallback decision")
		return fallbackDecision(), nil
	}
	return decision, nil
}

func fallbackDecision() contractx.IntentDecision {
	return contractx.IntentDecision{
		Intent:  contractx.IntentOther,
		Message: FallbackMessage,
	}
}

func parseDecision(content string) (contractx.IntentDecision, bool) {
	trimmed := stripCodeFences(content)
	if trimmed == "" {
		return contractx.IntentDecision{}, false
	}

	var out classifierOutput
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return contractx.IntentDecision{}, false
	}

	intent, ok := parseIntent(out.Intent)
	if !ok {
		return contractx.IntentDecision{}, false
	}

	productID := ""
	if out.ProductID != nil {
		productID = strings.TrimSpace(*out.ProductID)
	}

	message := SanitizeMessage(out.Message)
	if message == "" {
		message = FallbackMessage
	}

	return contractx.IntentDecision{
		Intent:    intent,
		ProductID: productID,
		Message:   message,
	}, true
}

func parseIntent(raw string) (contractx.IntentType, bool) {
	switch contractx.IntentType(strings.ToLower(strings.TrimSpace(raw))) {
	case contractx.IntentPurchase:
		return contractx.IntentPurchase, true
	case contractx.IntentInquiry:
		return contractx.IntentInquiry, true
	case contractx.IntentOther:
		return contractx.IntentOther, true
	default:
		return "", false
	}
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return strings.TrimSpace(trimmed)
}

const maxMessageRunes = 500

// SanitizeMessage bounds model-controlled text before it reaches the end
// user: control characters are dropped and the length is capped.
func SanitizeMessage(message string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if r < ' ' || r == 0x7f {
			return -1
		}
		return r
	}, message)

	cleaned = strings.Join(strings.Fields(cleaned), " ")
	runes := []rune(cleaned)
	if len(runes) > maxMessageRunes {
		cleaned = string(runes[:maxMessageRunes])
	}
	return cleaned
}
