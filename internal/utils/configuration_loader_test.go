package utils_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"

	"github.com/tyemirov/aicommit/internal/utils"
)

const (
	testEnvironmentPrefixConstant = "TESTAICOMMIT"
	testConfigurationNameConstant = "ai-commit"
	testConfigurationTypeConstant = "json"
	testConfigurationFileConstant = "ai-commit.json"
	testProviderKeyConstant       = "provider"
	testRetriesKeyConstant        = "settings.maxretries"
	testProviderEnvironmentName   = testEnvironmentPrefixConstant + "_PROVIDER"
)

type workspaceFixture struct {
	Provider string                   `mapstructure:"provider"`
	APIs     workspaceAPIsFixture     `mapstructure:"apis"`
	Settings workspaceSettingsFixture `mapstructure:"settings"`
}

type workspaceAPIsFixture struct {
	Gemini workspaceGeminiFixture `mapstructure:"gemini"`
}

type workspaceGeminiFixture struct {
	APIKey string `mapstructure:"apiKey"`
}

type workspaceSettingsFixture struct {
	MaxRetries int  `mapstructure:"maxRetries"`
	AutoFill   bool `mapstructure:"autoFill"`
}

func writeFixtureFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	filePath := filepath.Join(directory, testConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o600))
	return filePath
}

func TestConfigurationLoaderLayering(testInstance *testing.T) {
	testCases := []struct {
		name               string
		embedded           string
		fileContent        string
		environmentValue   string
		expectedProvider   string
		expectedRetries    int
		expectedAPIKey     string
		expectFileRecorded bool
	}{
		{
			name:             "defaults_only",
			expectedProvider: "gemini",
			expectedRetries:  3,
		},
		{
			name:             "embedded_over_defaults",
			embedded:         `{"settings":{"maxRetries":5}}`,
			expectedProvider: "gemini",
			expectedRetries:  5,
		},
		{
			name:               "file_over_embedded",
			embedded:           `{"settings":{"maxRetries":5}}`,
			fileContent:        `{"provider":"bedrock","apis":{"gemini":{"apiKey":"from-file"}}}`,
			expectedProvider:   "bedrock",
			expectedRetries:    5,
			expectedAPIKey:     "from-file",
			expectFileRecorded: true,
		},
		{
			name:               "environment_over_file",
			fileContent:        `{"provider":"bedrock","settings":{"maxRetries":1}}`,
			environmentValue:   "gemini",
			expectedProvider:   "gemini",
			expectedRetries:    1,
			expectFileRecorded: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			searchDirectory := testInstance.TempDir()
			expectedFilePath := ""
			if len(testCase.fileContent) > 0 {
				expectedFilePath = writeFixtureFile(testInstance, searchDirectory, testCase.fileContent)
			}
			if len(testCase.environmentValue) > 0 {
				testInstance.Setenv(testProviderEnvironmentName, testCase.environmentValue)
			}

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{searchDirectory})
			if len(testCase.embedded) > 0 {
				loader.SetEmbeddedConfiguration([]byte(testCase.embedded), testConfigurationTypeConstant)
			}

			var loaded workspaceFixture
			metadata, loadError := loader.LoadConfiguration("", map[string]any{
				testProviderKeyConstant: "gemini",
				testRetriesKeyConstant:  3,
			}, &loaded)
			require.NoError(testInstance, loadError)

			require.Equal(testInstance, testCase.expectedProvider, loaded.Provider)
			require.Equal(testInstance, testCase.expectedRetries, loaded.Settings.MaxRetries)
			require.Equal(testInstance, testCase.expectedAPIKey, loaded.APIs.Gemini.APIKey)
			if testCase.expectFileRecorded {
				require.Equal(testInstance, expectedFilePath, metadata.ConfigFileUsed)
			} else {
				require.Empty(testInstance, metadata.ConfigFileUsed)
			}
		})
	}
}

func TestConfigurationLoaderSearchPathOrder(testInstance *testing.T) {
	editorDirectory := filepath.Join(testInstance.TempDir(), ".vscode")
	rootDirectory := testInstance.TempDir()
	emptyDirectory := testInstance.TempDir()

	rootFile := writeFixtureFile(testInstance, rootDirectory, `{"provider":"bedrock"}`)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, "", []string{editorDirectory, emptyDirectory, rootDirectory})
	var loaded workspaceFixture
	metadata, loadError := loader.LoadConfiguration("", nil, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, rootFile, metadata.ConfigFileUsed)
	require.Equal(testInstance, "bedrock", loaded.Provider)

	editorFile := writeFixtureFile(testInstance, editorDirectory, `{"provider":"gemini"}`)
	loaded = workspaceFixture{}
	metadata, loadError = loader.LoadConfiguration("", nil, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, editorFile, metadata.ConfigFileUsed)
	require.Equal(testInstance, "gemini", loaded.Provider)
}

func TestConfigurationLoaderExplicitFileBypassesSearch(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	writeFixtureFile(testInstance, searchDirectory, `{"provider":"gemini"}`)
	explicitFile := writeFixtureFile(testInstance, filepath.Join(testInstance.TempDir(), "explicit"), `{"provider":"bedrock"}`)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, "", []string{searchDirectory})
	var loaded workspaceFixture
	metadata, loadError := loader.LoadConfiguration(" "+explicitFile+" ", nil, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, explicitFile, metadata.ConfigFileUsed)
	require.Equal(testInstance, "bedrock", loaded.Provider)
}

func TestConfigurationLoaderFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		prepare       func(*testing.T) (string, []string)
		target        any
		expectedError error
		expectedText  string
	}{
		{
			name: "missing_target",
			prepare: func(*testing.T) (string, []string) {
				return "", nil
			},
			expectedError: utils.ErrConfigurationTargetMissing,
		},
		{
			name: "missing_explicit_file",
			prepare: func(testInstance *testing.T) (string, []string) {
				return filepath.Join(testInstance.TempDir(), "absent.json"), nil
			},
			target:       &workspaceFixture{},
			expectedText: "unable to read configuration file",
		},
		{
			name: "malformed_search_file",
			prepare: func(testInstance *testing.T) (string, []string) {
				searchDirectory := testInstance.TempDir()
				writeFixtureFile(testInstance, searchDirectory, `{"provider":`)
				return "", []string{searchDirectory}
			},
			target:       &workspaceFixture{},
			expectedText: "unable to read configuration",
		},
		{
			name: "type_mismatch",
			prepare: func(testInstance *testing.T) (string, []string) {
				searchDirectory := testInstance.TempDir()
				writeFixtureFile(testInstance, searchDirectory, `{"settings":{"autoFill":{"nested":true}}}`)
				return "", []string{searchDirectory}
			},
			target:       &workspaceFixture{},
			expectedText: "unable to decode configuration",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			explicitPath, searchPaths := testCase.prepare(testInstance)
			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, "", searchPaths)

			_, loadError := loader.LoadConfiguration(explicitPath, nil, testCase.target)
			require.Error(testInstance, loadError)
			if testCase.expectedError != nil {
				require.True(testInstance, errors.Is(loadError, testCase.expectedError))
			}
			if len(testCase.expectedText) > 0 {
				require.Contains(testInstance, loadError.Error(), testCase.expectedText)
			}
		})
	}
}

func TestConfigurationLoaderDecodeHooks(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	writeFixtureFile(testInstance, searchDirectory, `{"provider":"  Bedrock ","apis":{"gemini":{"apiKey":" key "}}}`)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, "", []string{searchDirectory})
	loader.SetDecodeHooks(mapstructure.DecodeHookFuncType(func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if sourceType.Kind() != reflect.String || targetType.Kind() != reflect.String {
			return data, nil
		}
		return strings.ToLower(strings.TrimSpace(data.(string))), nil
	}))

	var loaded workspaceFixture
	_, loadError := loader.LoadConfiguration("", nil, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "bedrock", loaded.Provider)
	require.Equal(testInstance, "key", loaded.APIs.Gemini.APIKey)
}
