package commit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenConfigCommand(testInstance *testing.T) {
	const customDocument = `{"provider":"gemini","apis":{"gemini":{"apiKey":"custom-key"}}}`

	testCases := []struct {
		name                   string
		editorDocument         string
		rootDocument           string
		arguments              []string
		expectedPath           func(repositoryRoot string) string
		expectedStdoutContains []string
		expectedStderrContains []string
		unexpectedStderr       []string
	}{
		{
			name: "creates_default_when_missing",
			expectedPath: func(repositoryRoot string) string {
				return filepath.Join(repositoryRoot, ".vscode", "ai-commit.json")
			},
			expectedStdoutContains: []string{`"provider": "gemini"`, `"maxRetries": 3`},
			expectedStderrContains: []string{"Created default configuration at", "warning: apis.gemini.apiKey: Gemini API key is required"},
		},
		{
			name:         "prints_existing_root_document",
			rootDocument: customDocument,
			expectedPath: func(repositoryRoot string) string {
				return filepath.Join(repositoryRoot, "ai-commit.json")
			},
			expectedStdoutContains: []string{customDocument},
			unexpectedStderr:       []string{"Created", "warning"},
		},
		{
			name:           "force_replaces_editor_document",
			editorDocument: customDocument,
			arguments:      []string{"--force"},
			expectedPath: func(repositoryRoot string) string {
				return filepath.Join(repositoryRoot, ".vscode", "ai-commit.json")
			},
			expectedStdoutContains: []string{`"apiKey": ""`},
			expectedStderrContains: []string{"Created default configuration at"},
		},
		{
			name:           "malformed_document_is_kept",
			editorDocument: "{not json",
			expectedPath: func(repositoryRoot string) string {
				return filepath.Join(repositoryRoot, ".vscode", "ai-commit.json")
			},
			expectedStdoutContains: []string{"{not json"},
			expectedStderrContains: []string{"could not be parsed; defaults are in effect"},
			unexpectedStderr:       []string{"Created"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryRoot := testInstance.TempDir()
			if len(testCase.editorDocument) > 0 {
				writeWorkspaceConfiguration(testInstance, repositoryRoot, testCase.editorDocument)
			}
			if len(testCase.rootDocument) > 0 {
				require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryRoot, "ai-commit.json"), []byte(testCase.rootDocument), 0o600))
			}

			builder := OpenConfigCommandBuilder{
				ServicesProvider: testServicesProvider(newStagedRepositoryExecutor(), stubHistory{}, &stubContentGenerator{}),
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)
			outputs := prepareCommand(testInstance, command, repositoryRoot, "", testCase.arguments...)

			require.NoError(testInstance, command.Execute())

			expectedPath := testCase.expectedPath(repositoryRoot)
			require.Contains(testInstance, outputs.standardOutput.String(), "Configuration file: "+expectedPath+"\n")
			for _, fragment := range testCase.expectedStdoutContains {
				require.Contains(testInstance, outputs.standardOutput.String(), fragment)
			}
			for _, fragment := range testCase.expectedStderrContains {
				require.Contains(testInstance, outputs.standardError.String(), fragment)
			}
			for _, fragment := range testCase.unexpectedStderr {
				require.NotContains(testInstance, outputs.standardError.String(), fragment)
			}
			require.FileExists(testInstance, expectedPath)
		})
	}
}
