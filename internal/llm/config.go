// Package llm wraps the external generator used by the analysis stages:
// model selection, provider calls and the validate-and-retry loop.
package llm

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for cheap classification
	TierLite ModelTier = "lite"
	// TierStandard is for structured extraction
	TierStandard ModelTier = "standard"
	// TierAdvanced is for judgement-heavy stages: matching and bullet writing
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Stage names the pipeline step a call belongs to
type Stage string

// Pipeline stages that call the generator
const (
	StageRequirements Stage = "requirements"
	StageMatching     Stage = "matching"
	StageBullets      Stage = "bullets"
)

// stageTiers assigns a model tier to each stage
var stageTiers = map[Stage]ModelTier{
	StageRequirements: TierStandard,
	StageMatching:     TierAdvanced,
	StageBullets:      TierAdvanced,
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// ModelForStage returns the model configured for a pipeline stage
func (c *Config) ModelForStage(stage Stage) string {
	tier, ok := stageTiers[stage]
	if !ok {
		tier = TierStandard
	}
	return c.GetModel(tier)
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := c.clone()
	newConfig.Models[tier] = model
	return newConfig
}

// WithModelOverride returns a new Config that uses one model for every tier
func (c *Config) WithModelOverride(model string) *Config {
	newConfig := c.clone()
	if model == "" {
		return newConfig
	}
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		newConfig.Models[tier] = model
	}
	return newConfig
}

func (c *Config) clone() *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string, len(c.Models)),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	return newConfig
}
