package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	"github.com/tyemirov/aicommit/internal/backend"
)

type recordingBackend struct {
	name    string
	apis    aiconfig.APIs
	updates int
}

func (recording *recordingBackend) Name() string { return recording.name }

func (recording *recordingBackend) IsConfigured() bool {
	return len(recording.apis.Gemini.APIKey) > 0
}

func (recording *recordingBackend) Generate(context.Context, string) (string, error) {
	return recording.apis.Gemini.APIKey, nil
}

func (recording *recordingBackend) UpdateConfiguration(apis aiconfig.APIs) {
	recording.apis = apis
	recording.updates++
}

func TestSelectorCachesPerProvider(testInstance *testing.T) {
	constructed := map[aiconfig.Provider]int{}
	factoryFor := func(provider aiconfig.Provider) backend.Factory {
		return func(apis aiconfig.APIs) backend.Backend {
			constructed[provider]++
			return &recordingBackend{name: string(provider), apis: apis}
		}
	}
	selector := backend.NewSelector(map[aiconfig.Provider]backend.Factory{
		aiconfig.ProviderGemini:  factoryFor(aiconfig.ProviderGemini),
		aiconfig.ProviderBedrock: factoryFor(aiconfig.ProviderBedrock),
	})

	configuration := aiconfig.DefaultConfiguration()
	configuration.APIs.Gemini.APIKey = "first"
	first, firstError := selector.Select(configuration)
	require.NoError(testInstance, firstError)

	configuration.APIs.Gemini.APIKey = "second"
	second, secondError := selector.Select(configuration)
	require.NoError(testInstance, secondError)

	require.Same(testInstance, first, second)
	require.Equal(testInstance, 1, constructed[aiconfig.ProviderGemini])
	require.Equal(testInstance, 1, second.(*recordingBackend).updates)
	text, _ := second.Generate(context.Background(), "prompt")
	require.Equal(testInstance, "second", text)

	configuration.Provider = aiconfig.ProviderBedrock
	bedrockInstance, bedrockError := selector.Select(configuration)
	require.NoError(testInstance, bedrockError)
	require.NotSame(testInstance, first, bedrockInstance)

	selector.ResetAll()
	configuration.Provider = aiconfig.ProviderGemini
	third, thirdError := selector.Select(configuration)
	require.NoError(testInstance, thirdError)
	require.NotSame(testInstance, first, third)
	require.Equal(testInstance, 2, constructed[aiconfig.ProviderGemini])
}

func TestSelectorRejectsUnknownProvider(testInstance *testing.T) {
	selector := backend.NewSelector(nil)
	configuration := aiconfig.DefaultConfiguration()
	configuration.Provider = "openai"

	instance, selectError := selector.Select(configuration)
	require.Nil(testInstance, instance)

	var providerError aiconfig.UnsupportedProviderError
	require.True(testInstance, errors.As(selectError, &providerError))
	require.Equal(testInstance, aiconfig.Provider("openai"), providerError.Provider)
	require.ErrorIs(testInstance, selectError, aiconfig.ErrInvalidConfiguration)
}

func TestBackendErrors(testInstance *testing.T) {
	testCases := []struct {
		name            string
		err             error
		expectedMessage string
		expectedTarget  error
	}{
		{
			name:            "not_configured",
			err:             backend.NotConfiguredError{Provider: "Gemini", Requirement: "Please provide API key."},
			expectedMessage: "Gemini service not configured. Please provide API key.",
			expectedTarget:  backend.ErrBackendNotConfigured,
		},
		{
			name:            "empty_response",
			err:             backend.BackendError{Provider: "Gemini", Cause: backend.EmptyResponseError{Provider: "Gemini"}},
			expectedMessage: "Gemini API error: Empty response from Gemini API",
			expectedTarget:  backend.ErrEmptyResponse,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.EqualError(testInstance, testCase.err, testCase.expectedMessage)
			require.ErrorIs(testInstance, testCase.err, testCase.expectedTarget)
		})
	}
}
