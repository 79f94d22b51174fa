package config

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey         string
	ModelName      string
	EmbeddingModel string
	MaxTokens      int
	Temperature    float32
	MaxBodySize    int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	MaxBodySize int
}

// TriageConfig represents the tunables of the triage pipeline
type TriageConfig struct {
	PrefilterEnabled       bool
	SummaryMaxChars        int
	ToneAdaptationStrength float64
	ToneMinSamples         int
	ContextCap             int
}

// VectorConfig represents the configuration for the vector index
type VectorConfig struct {
	PostgresDSN     string
	Dimensions      int
	DefaultTopK     int
	DefaultMinScore float64
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:         c.GetString("openai.api_key"),
		ModelName:      c.GetString("openai.model_name"),
		EmbeddingModel: c.GetString("openai.embedding_model"),
		MaxTokens:      c.GetInt("openai.max_tokens"),
		Temperature:    float32(c.GetFloat64("openai.temperature")),
		MaxBodySize:    c.GetInt("openai.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetTriage returns the triage pipeline configuration
func (c *Config) GetTriage() TriageConfig {
	return TriageConfig{
		PrefilterEnabled:       c.GetBool("triage.prefilter_enabled"),
		SummaryMaxChars:        c.GetInt("triage.summary_max_chars"),
		ToneAdaptationStrength: c.GetFloat64("triage.tone_adaptation_strength"),
		ToneMinSamples:         c.GetInt("triage.tone_min_samples"),
		ContextCap:             c.GetInt("triage.context_cap"),
	}
}

// GetVector returns the vector index configuration
func (c *Config) GetVector() VectorConfig {
	return VectorConfig{
		PostgresDSN:     c.GetString("vector.postgres_dsn"),
		Dimensions:      c.GetInt("vector.dimensions"),
		DefaultTopK:     c.GetInt("vector.default_top_k"),
		DefaultMinScore: c.GetFloat64("vector.default_min_score"),
	}
}
