package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/procurehq/replenish/internal/config"
	"github.com/procurehq/replenish/internal/domain"
)

// OpenAIService talks to any OpenAI-compatible chat completion endpoint.
type OpenAIService struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIService builds a client from config. The endpoint may be any
// OpenAI-compatible base URL.
func NewOpenAIService(cfg config.InferenceConfig) (*OpenAIService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("inference endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("inference model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (s *OpenAIService) InferSchema(ctx context.Context, columns []ColumnSample) (domain.SchemaMapping, error) {
	payload, err := json.MarshalIndent(columns, "", "  ")
	if err != nil {
		return domain.SchemaMapping{}, domain.WrapError(domain.ErrExternalServiceFailure, err,
			"failed to encode column samples")
	}

	prompt := fmt.Sprintf(`Analyze this dataset and identify which columns correspond to standard forecasting fields.

Dataset columns and samples:
%s

Identify and return ONLY a JSON object with these fields:
{
  "date_column": "exact column name containing dates/timestamps",
  "item_column": "exact column name containing item/product names or codes",
  "quantity_column": "exact column name containing quantity/amount/sales numbers",
  "date_format": "detected date format like DD/MM/YYYY or YYYY-MM-DD or MM-DD-YYYY",
  "unit": "detected unit (pieces, kg, liters, meters, units, etc.)",
  "issues_found": ["list of any data quality issues noticed"],
  "confidence": "high/medium/low"
}

Rules:
- Date column: look for columns with date-like values (2023-01-15, 15/01/2023, etc.)
- Item column: product names, item codes, SKU, material names
- Quantity column: numeric values representing amounts ordered/sold/used
- Unit detection: infer from item names (screws/bolts/plates=pieces, oil/paint=liters, wire/cable=meters, grease/powder=kg); default to "pieces" if unclear
- Issues: missing values, suspicious outliers, inconsistent formats
- Return ONLY valid JSON, no explanation`, string(payload))

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return domain.SchemaMapping{}, domain.WrapError(domain.ErrExternalServiceFailure, err,
			"schema detection failed")
	}

	var mapping domain.SchemaMapping
	if err := json.Unmarshal([]byte(stripJSONFence(content)), &mapping); err != nil {
		return domain.SchemaMapping{}, domain.WrapError(domain.ErrExternalServiceFailure, err,
			"schema detection returned malformed JSON")
	}

	return mapping, nil
}

func (s *OpenAIService) GenerateReasoning(ctx context.Context, in ReasoningInput) (string, error) {
	prompt := fmt.Sprintf(`You are a supply chain advisor. Provide a brief 4-5 line explanation for this order recommendation.

Current Stock: %d units (Reorder Point: %d)
Forecast: %d units/month (Model: %s, %.0f%% confidence)
Trend: %s
Recommended Order: %d units
Urgency: %s

Explain concisely why this quantity makes sense, mentioning the forecast confidence. Be professional and easy to understand.`,
		in.CurrentStock, in.ReorderPoint, in.PredictedDemand, in.ModelUsed,
		in.Confidence*100, in.Trend, in.FinalQuantity, in.Urgency)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return "", domain.WrapError(domain.ErrExternalServiceFailure, err, "reasoning generation failed")
	}
	return content, nil
}

func (s *OpenAIService) complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("inference request failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	log.Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("inference request completed")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// stripJSONFence removes a ```json markdown fence if the model wrapped
// its output in one.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
