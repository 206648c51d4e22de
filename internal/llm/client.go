package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation with the generator
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONSchemaFormat names the schema the response must satisfy
type JSONSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// ResponseFormat constrains the shape of the generator output
type ResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *JSONSchemaFormat `json:"json_schema,omitempty"`
}

// Request is a single call to the external generator
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Temperature    float32         `json:"temperature"`
	MaxTokens      int32           `json:"max_tokens,omitempty"`
}

// Generator is an abstraction over text generation providers.
// Implementations return the raw response text; validation happens in CallWithRetry.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiGenerator implements Generator for Google Gemini
type GeminiGenerator struct {
	client *genai.Client
	config *Config
}

// NewGenerator creates a generator for the configured provider
func NewGenerator(ctx context.Context, config *Config, apiKey string) (*GeminiGenerator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiGenerator(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}

// NewGeminiGenerator creates a new Gemini generator
func NewGeminiGenerator(ctx context.Context, config *Config, apiKey string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		config: config,
	}, nil
}

// Generate sends the conversation to Gemini. System messages become the system
// instruction, earlier turns become chat history and the last turn is sent.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = g.config.GetModel(TierStandard)
	}
	if modelName == "" {
		return "", fmt.Errorf("no model configured")
	}

	var system []string
	var turns []Message
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != RoleUser {
		return "", fmt.Errorf("conversation must end with a user message")
	}

	model := g.client.GenerativeModel(modelName)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}
	if req.ResponseFormat != nil {
		model.ResponseMIMEType = "application/json"
		if req.ResponseFormat.JSONSchema != nil {
			// Gemini only understands a subset of JSON Schema; unsupported shapes are
			// left to the post-hoc validation in CallWithRetry.
			if schema, ok := toGenaiSchema(req.ResponseFormat.JSONSchema.Schema); ok {
				model.ResponseSchema = schema
			}
		}
	}

	session := model.StartChat()
	for _, m := range turns[:len(turns)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return "", classifyError(err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client
func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

// classifyError converts provider errors into the shared taxonomy so the retry loop
// can tell transient failures from permanent ones.
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &apperrors.UpstreamServiceError{
			StatusCode: apiErr.Code,
			Message:    "Gemini request failed",
			Cause:      err,
		}
	}
	return &apperrors.UpstreamServiceError{Message: "Gemini request failed", Cause: err}
}

// extractTextFromResponse extracts text from Gemini API response.
// Blocked or empty replies are format errors so the retry loop asks again;
// CallWithRetry fills in the stage.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", emptyResponse("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", emptyResponse(fmt.Sprintf("no content in response (finish reason %v)", candidate.FinishReason))
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", emptyResponse("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

func emptyResponse(detail string) error {
	return &apperrors.UpstreamFormatError{Message: "generator returned no text: " + detail}
}

// toGenaiSchema converts a JSON Schema document into Gemini's schema type.
// It reports false for constructs Gemini cannot express, such as objects
// whose keys are not known in advance.
func toGenaiSchema(node map[string]any) (*genai.Schema, bool) {
	typeName, _ := node["type"].(string)
	schema := &genai.Schema{}
	if desc, ok := node["description"].(string); ok {
		schema.Description = desc
	}
	if enum, ok := node["enum"].([]any); ok {
		for _, v := range enum {
			if s, ok := v.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}

	switch typeName {
	case "string":
		schema.Type = genai.TypeString
	case "number":
		schema.Type = genai.TypeNumber
	case "integer":
		schema.Type = genai.TypeInteger
	case "boolean":
		schema.Type = genai.TypeBoolean
	case "array":
		schema.Type = genai.TypeArray
		items, ok := node["items"].(map[string]any)
		if !ok {
			return nil, false
		}
		itemSchema, ok := toGenaiSchema(items)
		if !ok {
			return nil, false
		}
		schema.Items = itemSchema
	case "object":
		schema.Type = genai.TypeObject
		props, ok := node["properties"].(map[string]any)
		if !ok || len(props) == 0 {
			return nil, false
		}
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			child, ok := raw.(map[string]any)
			if !ok {
				return nil, false
			}
			childSchema, ok := toGenaiSchema(child)
			if !ok {
				return nil, false
			}
			schema.Properties[name] = childSchema
		}
		if required, ok := node["required"].([]any); ok {
			for _, r := range required {
				if s, ok := r.(string); ok {
					schema.Required = append(schema.Required, s)
				}
			}
		}
	default:
		return nil, false
	}

	return schema, true
}
