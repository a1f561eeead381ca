package gemini_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	"github.com/tyemirov/aicommit/internal/backend"
	"github.com/tyemirov/aicommit/internal/backend/gemini"
)

type stubGenerator struct {
	response string
	err      error
	models   []string
	prompts  []string
}

func (generator *stubGenerator) GenerateContent(_ context.Context, model string, prompt string) (string, error) {
	generator.models = append(generator.models, model)
	generator.prompts = append(generator.prompts, prompt)
	return generator.response, generator.err
}

type recordingFactory struct {
	generator *stubGenerator
	apiKeys   []string
	err       error
}

func (factory *recordingFactory) create(_ context.Context, apiKey string) (gemini.ContentGenerator, error) {
	factory.apiKeys = append(factory.apiKeys, apiKey)
	if factory.err != nil {
		return nil, factory.err
	}
	return factory.generator, nil
}

func TestGeminiGenerate(testInstance *testing.T) {
	upstreamError := errors.New("quota exceeded")
	testCases := []struct {
		name            string
		configuration   aiconfig.GeminiConfiguration
		generator       *stubGenerator
		factoryError    error
		expectedText    string
		expectedModel   string
		expectedTarget  error
		expectedMessage string
	}{
		{
			name:          "success_trims_and_defaults_model",
			configuration: aiconfig.GeminiConfiguration{APIKey: "key"},
			generator:     &stubGenerator{response: "  ✨ feat(auth) [FE]: add login \n"},
			expectedText:  "✨ feat(auth) [FE]: add login",
			expectedModel: "gemini-pro",
		},
		{
			name:          "custom_model",
			configuration: aiconfig.GeminiConfiguration{APIKey: "key", Model: "gemini-1.5-flash"},
			generator:     &stubGenerator{response: "text"},
			expectedText:  "text",
			expectedModel: "gemini-1.5-flash",
		},
		{
			name:            "not_configured",
			configuration:   aiconfig.GeminiConfiguration{APIKey: "  "},
			generator:       &stubGenerator{},
			expectedTarget:  backend.ErrBackendNotConfigured,
			expectedMessage: "Gemini service not configured. Please provide API key.",
		},
		{
			name:            "empty_response",
			configuration:   aiconfig.GeminiConfiguration{APIKey: "key"},
			generator:       &stubGenerator{response: " \n "},
			expectedTarget:  backend.ErrEmptyResponse,
			expectedMessage: "Gemini API error: Empty response from Gemini API",
		},
		{
			name:            "upstream_failure",
			configuration:   aiconfig.GeminiConfiguration{APIKey: "key"},
			generator:       &stubGenerator{err: upstreamError},
			expectedTarget:  upstreamError,
			expectedMessage: "Gemini API error: quota exceeded",
		},
		{
			name:            "client_creation_failure",
			configuration:   aiconfig.GeminiConfiguration{APIKey: "key"},
			generator:       &stubGenerator{},
			factoryError:    upstreamError,
			expectedTarget:  upstreamError,
			expectedMessage: "unable to create client",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := &recordingFactory{generator: testCase.generator, err: testCase.factoryError}
			geminiBackend := gemini.NewWithClientFactory(testCase.configuration, factory.create)

			text, generateError := geminiBackend.Generate(context.Background(), "prompt")
			if testCase.expectedTarget != nil {
				require.Error(testInstance, generateError)
				require.ErrorIs(testInstance, generateError, testCase.expectedTarget)
				require.Contains(testInstance, generateError.Error(), testCase.expectedMessage)
				return
			}
			require.NoError(testInstance, generateError)
			require.Equal(testInstance, testCase.expectedText, text)
			require.Equal(testInstance, []string{testCase.expectedModel}, testCase.generator.models)
			require.Equal(testInstance, []string{"prompt"}, testCase.generator.prompts)
		})
	}
}

func TestGeminiUpdateConfiguration(testInstance *testing.T) {
	factory := &recordingFactory{generator: &stubGenerator{response: "ok"}}
	geminiBackend := gemini.NewWithClientFactory(aiconfig.GeminiConfiguration{APIKey: "first"}, factory.create)

	require.True(testInstance, geminiBackend.IsConfigured())
	require.Equal(testInstance, "Gemini", geminiBackend.Name())

	_, firstError := geminiBackend.Generate(context.Background(), "prompt")
	require.NoError(testInstance, firstError)
	_, secondError := geminiBackend.Generate(context.Background(), "prompt")
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, []string{"first"}, factory.apiKeys)

	geminiBackend.UpdateConfiguration(aiconfig.APIs{Gemini: aiconfig.GeminiConfiguration{APIKey: "second"}})
	_, thirdError := geminiBackend.Generate(context.Background(), "prompt")
	require.NoError(testInstance, thirdError)
	require.Equal(testInstance, []string{"first", "second"}, factory.apiKeys)

	geminiBackend.UpdateConfiguration(aiconfig.APIs{})
	require.False(testInstance, geminiBackend.IsConfigured())
	_, unconfiguredError := geminiBackend.Generate(context.Background(), "prompt")
	require.ErrorIs(testInstance, unconfiguredError, backend.ErrBackendNotConfigured)
}

func TestGeminiFactorySatisfiesSelector(testInstance *testing.T) {
	selector := backend.NewSelector(map[aiconfig.Provider]backend.Factory{aiconfig.ProviderGemini: gemini.Factory})
	configuration := aiconfig.DefaultConfiguration()

	instance, selectError := selector.Select(configuration)
	require.NoError(testInstance, selectError)
	require.Equal(testInstance, gemini.ProviderNameConstant, instance.Name())
	require.False(testInstance, instance.IsConfigured())
}
