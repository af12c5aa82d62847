package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/kontext/internal/config"
	"github.com/sandevgo/kontext/internal/core"
	"github.com/sandevgo/kontext/pkg/retry"
)

const extractSystemPrompt = `You extract conversational context from a single user message.
Respond with a JSON object only, no prose:
{
  "location": {"value": "", "confidence": 0.0},
  "time": {"value": "", "confidence": 0.0},
  "topic": {"value": "", "confidence": 0.0},
  "intent": {"value": "", "confidence": 0.0},
  "keywords": [],
  "sentiment": ""
}
Confidence is 0.0 to 1.0. Use confidence 0.0 and an empty value for
anything the message does not mention. Sentiment is one of
positive, negative, neutral.`

const similaritySystemPrompt = `You rate how similar two user messages are in meaning.
Respond with a single integer from 0 to 100 and nothing else.`

// OpenAICompatible talks to any /v1/chat/completions endpoint and
// implements core.LanguageProvider on top of it.
type OpenAICompatible struct {
	baseClient
	temperature float64
	retrier     *retry.Retrier
}

func NewOpenAICompatible(cfg *config.LLMConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseClient:  newBaseClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout),
		temperature: cfg.Temperature,
		retrier:     retry.NewDefaultRetrier(),
	}
}

func (o *OpenAICompatible) ExtractSignals(ctx context.Context, text string) (*core.SignalBundle, error) {
	raw, err := o.chat(ctx, extractSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSignalUnavailable, err)
	}

	bundle, err := parseSignalBundle(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSignalUnavailable, err)
	}
	return bundle, nil
}

func (o *OpenAICompatible) SemanticSimilarity(ctx context.Context, a, b string) (float64, error) {
	user := fmt.Sprintf("Message 1: %s\nMessage 2: %s", a, b)
	raw, err := o.chat(ctx, similaritySystemPrompt, user)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrSignalUnavailable, err)
	}

	score, err := parseScore(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrSignalUnavailable, err)
	}
	return score, nil
}

// chat runs one request-response exchange, retrying transient failures.
func (o *OpenAICompatible) chat(ctx context.Context, system, user string) (string, error) {
	payload := map[string]any{
		"model":       o.model,
		"temperature": o.temperature,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	var content string
	err := o.retrier.Do(ctx, func() error {
		resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		content, err = parseChatResponse(resp)
		return err
	})
	return content, err
}

func parseChatResponse(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices: %s", string(data))
	}
	return result.Choices[0].Message.Content, nil
}
