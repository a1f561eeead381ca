// Package gemini implements the Google Gemini generation backend on top of the genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	"github.com/tyemirov/aicommit/internal/backend"
)

const (
	// ProviderNameConstant is the display name reported by the backend.
	ProviderNameConstant = "Gemini"

	defaultModelConstant         = "gemini-pro"
	requirementMessageConstant   = "Please provide API key."
	clientCreationTemplate       = "unable to create client: %w"
	missingClientMessageConstant = "client unavailable"
)

var errMissingClient = errors.New(missingClientMessageConstant)

// ContentGenerator issues one generation request.
type ContentGenerator interface {
	GenerateContent(executionContext context.Context, model string, prompt string) (string, error)
}

// ClientFactory constructs a ContentGenerator for an API key.
type ClientFactory func(executionContext context.Context, apiKey string) (ContentGenerator, error)

// Backend talks to the Gemini API.
type Backend struct {
	mutex         sync.RWMutex
	configuration aiconfig.GeminiConfiguration
	clientFactory ClientFactory
	generator     ContentGenerator
}

// New constructs a backend using the genai SDK.
func New(configuration aiconfig.GeminiConfiguration) *Backend {
	return NewWithClientFactory(configuration, NewGenAIClient)
}

// NewWithClientFactory constructs a backend with a substitute client factory.
func NewWithClientFactory(configuration aiconfig.GeminiConfiguration, clientFactory ClientFactory) *Backend {
	if clientFactory == nil {
		clientFactory = NewGenAIClient
	}
	return &Backend{configuration: configuration, clientFactory: clientFactory}
}

// Factory adapts New to the selector contract.
func Factory(apis aiconfig.APIs) backend.Backend {
	return New(apis.Gemini)
}

// Name reports the provider display name.
func (geminiBackend *Backend) Name() string {
	return ProviderNameConstant
}

// IsConfigured reports whether an API key is present.
func (geminiBackend *Backend) IsConfigured() bool {
	geminiBackend.mutex.RLock()
	defer geminiBackend.mutex.RUnlock()
	return isConfigured(geminiBackend.configuration)
}

// UpdateConfiguration replaces the credentials and drops the current client.
func (geminiBackend *Backend) UpdateConfiguration(apis aiconfig.APIs) {
	geminiBackend.mutex.Lock()
	defer geminiBackend.mutex.Unlock()
	geminiBackend.configuration = apis.Gemini
	geminiBackend.generator = nil
}

// Generate sends the prompt as a single user turn and returns the trimmed reply.
func (geminiBackend *Backend) Generate(executionContext context.Context, prompt string) (string, error) {
	generator, model, clientError := geminiBackend.ensureGenerator(executionContext)
	if clientError != nil {
		return "", clientError
	}

	text, generateError := generator.GenerateContent(executionContext, model, prompt)
	if generateError != nil {
		return "", backend.BackendError{Provider: ProviderNameConstant, Cause: generateError}
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return "", backend.BackendError{Provider: ProviderNameConstant, Cause: backend.EmptyResponseError{Provider: ProviderNameConstant}}
	}
	return trimmed, nil
}

func (geminiBackend *Backend) ensureGenerator(executionContext context.Context) (ContentGenerator, string, error) {
	geminiBackend.mutex.Lock()
	defer geminiBackend.mutex.Unlock()

	if !isConfigured(geminiBackend.configuration) {
		return nil, "", backend.NotConfiguredError{Provider: ProviderNameConstant, Requirement: requirementMessageConstant}
	}

	model := strings.TrimSpace(geminiBackend.configuration.Model)
	if len(model) == 0 {
		model = defaultModelConstant
	}

	if geminiBackend.generator == nil {
		generator, creationError := geminiBackend.clientFactory(executionContext, strings.TrimSpace(geminiBackend.configuration.APIKey))
		if creationError != nil {
			return nil, "", backend.BackendError{Provider: ProviderNameConstant, Cause: fmt.Errorf(clientCreationTemplate, creationError)}
		}
		if generator == nil {
			return nil, "", backend.BackendError{Provider: ProviderNameConstant, Cause: fmt.Errorf(clientCreationTemplate, errMissingClient)}
		}
		geminiBackend.generator = generator
	}
	return geminiBackend.generator, model, nil
}

func isConfigured(configuration aiconfig.GeminiConfiguration) bool {
	return len(strings.TrimSpace(configuration.APIKey)) > 0
}

type genAIGenerator struct {
	client *genai.Client
}

// NewGenAIClient constructs a Gemini API client for the key.
func NewGenAIClient(executionContext context.Context, apiKey string) (ContentGenerator, error) {
	client, clientError := genai.NewClient(executionContext, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if clientError != nil {
		return nil, clientError
	}
	return &genAIGenerator{client: client}, nil
}

func (generator *genAIGenerator) GenerateContent(executionContext context.Context, model string, prompt string) (string, error) {
	result, generateError := generator.client.Models.GenerateContent(executionContext, model, genai.Text(prompt), nil)
	if generateError != nil {
		return "", generateError
	}
	return result.Text(), nil
}
