// Package aiconfig loads, validates and writes the per-workspace ai-commit.json document
// that selects the generation provider and tunes retries, timeouts and the apply step.
package aiconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Provider identifies a generation backend.
type Provider string

// Supported providers.
const (
	ProviderGemini  Provider = "gemini"
	ProviderBedrock Provider = "bedrock"
)

const (
	defaultGeminiModelConstant          = "gemini-pro"
	defaultBedrockRegionConstant        = "us-east-1"
	defaultBedrockModelConstant         = "anthropic.claude-3-sonnet-20240229-v1:0"
	defaultMaxRetriesConstant           = 3
	defaultTimeoutMillisecondsConstant  = 30000
	invalidConfigurationMessageConstant = "AI Commit configuration is invalid or missing"
	unsupportedProviderTemplateConstant = "unsupported provider %q"
	validationErrorTemplateConstant     = "%s: %s"
	geminiAPIKeyFieldConstant           = "apis.gemini.apiKey"
	bedrockCredentialsFieldConstant     = "apis.bedrock"
	maxRetriesFieldConstant             = "settings.maxRetries"
	timeoutFieldConstant                = "settings.timeout"
	geminiAPIKeyRequiredMessageConstant = "Gemini API key is required"
	bedrockRequiredMessageConstant      = "AWS Bedrock credentials are required"
	maxRetriesMessageConstant           = "must be at least 1"
	timeoutMessageConstant              = "must be greater than 0"
)

// ErrInvalidConfiguration is the root of every validation failure.
var ErrInvalidConfiguration = errors.New(invalidConfigurationMessageConstant)

// UnsupportedProviderError reports a provider outside the supported set.
type UnsupportedProviderError struct {
	Provider Provider
}

// Error describes the unsupported provider.
func (providerError UnsupportedProviderError) Error() string {
	return fmt.Sprintf(unsupportedProviderTemplateConstant, providerError.Provider)
}

// Unwrap marks the failure as a configuration problem.
func (providerError UnsupportedProviderError) Unwrap() error {
	return ErrInvalidConfiguration
}

// ValidationError reports a single invalid or missing field.
type ValidationError struct {
	Field   string
	Message string
}

// Error describes the invalid field.
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.Field, validationError.Message)
}

// Unwrap marks the failure as a configuration problem.
func (validationError ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// GeminiConfiguration holds Backend A credentials.
type GeminiConfiguration struct {
	APIKey string `mapstructure:"apiKey" json:"apiKey"`
	Model  string `mapstructure:"model" json:"model"`
}

// BedrockConfiguration holds Backend B credentials.
type BedrockConfiguration struct {
	Region          string `mapstructure:"region" json:"region"`
	AccessKeyID     string `mapstructure:"accessKeyId" json:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey" json:"secretAccessKey"`
	Model           string `mapstructure:"model" json:"model"`
}

// APIs groups the per-provider credentials.
type APIs struct {
	Gemini  GeminiConfiguration  `mapstructure:"gemini" json:"gemini"`
	Bedrock BedrockConfiguration `mapstructure:"bedrock" json:"bedrock"`
}

// Settings tunes the generation pipeline.
type Settings struct {
	AutoFill      bool `mapstructure:"autoFill" json:"autoFill"`
	ShowPreview   bool `mapstructure:"showPreview" json:"showPreview"`
	MaxRetries    int  `mapstructure:"maxRetries" json:"maxRetries"`
	TimeoutMillis int  `mapstructure:"timeout" json:"timeout"`
}

// Configuration mirrors the ai-commit.json document.
type Configuration struct {
	Provider     Provider     `mapstructure:"provider" json:"provider"`
	APIs         APIs         `mapstructure:"apis" json:"apis"`
	Settings     Settings     `mapstructure:"settings" json:"settings"`
	CustomPrompt PromptSuffix `mapstructure:"customPrompt" json:"customPrompt,omitempty"`
}

// PromptSuffix is appended to the generation prompt exactly as written; unlike other
// string settings it is not trimmed when decoded.
type PromptSuffix string

// DefaultConfiguration returns the document used when no file is present.
func DefaultConfiguration() Configuration {
	return Configuration{
		Provider: ProviderGemini,
		APIs: APIs{
			Gemini: GeminiConfiguration{Model: defaultGeminiModelConstant},
			Bedrock: BedrockConfiguration{
				Region: defaultBedrockRegionConstant,
				Model:  defaultBedrockModelConstant,
			},
		},
		Settings: Settings{
			AutoFill:      true,
			ShowPreview:   false,
			MaxRetries:    defaultMaxRetriesConstant,
			TimeoutMillis: defaultTimeoutMillisecondsConstant,
		},
	}
}

// Timeout converts the per-attempt timeout to a duration.
func (configuration Configuration) Timeout() time.Duration {
	return time.Duration(configuration.Settings.TimeoutMillis) * time.Millisecond
}

// Validate checks the provider, the selected provider's credentials and the settings bounds.
// Every returned error satisfies errors.Is(err, ErrInvalidConfiguration).
func (configuration Configuration) Validate() error {
	switch configuration.Provider {
	case ProviderGemini:
		if isBlank(configuration.APIs.Gemini.APIKey) {
			return ValidationError{Field: geminiAPIKeyFieldConstant, Message: geminiAPIKeyRequiredMessageConstant}
		}
	case ProviderBedrock:
		bedrock := configuration.APIs.Bedrock
		if isBlank(bedrock.AccessKeyID) || isBlank(bedrock.SecretAccessKey) || isBlank(bedrock.Region) {
			return ValidationError{Field: bedrockCredentialsFieldConstant, Message: bedrockRequiredMessageConstant}
		}
	default:
		return UnsupportedProviderError{Provider: configuration.Provider}
	}

	if configuration.Settings.MaxRetries < 1 {
		return ValidationError{Field: maxRetriesFieldConstant, Message: maxRetriesMessageConstant}
	}
	if configuration.Settings.TimeoutMillis <= 0 {
		return ValidationError{Field: timeoutFieldConstant, Message: timeoutMessageConstant}
	}
	return nil
}

// IsSupportedProvider reports whether the provider has a backend.
func IsSupportedProvider(provider Provider) bool {
	return provider == ProviderGemini || provider == ProviderBedrock
}

func isBlank(value string) bool {
	return len(strings.TrimSpace(value)) == 0
}
