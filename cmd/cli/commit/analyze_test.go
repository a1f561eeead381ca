package commit

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tyemirov/aicommit/internal/commitformat"
	"github.com/tyemirov/aicommit/internal/commitmsg"
	"github.com/tyemirov/aicommit/internal/gitrepo"
)

func TestAnalyzeCommandTextOutput(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	builder := AnalyzeCommandBuilder{
		ServicesProvider: testServicesProvider(newStagedRepositoryExecutor(), stubHistory{branch: "feature/login", commits: []string{"abc1234 add readme"}}, &stubContentGenerator{}),
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	outputs := prepareCommand(testInstance, command, repositoryRoot, "")

	require.NoError(testInstance, command.Execute())

	expected := "Branch: feature/login\n" +
		"Staged files: 2\n" +
		"  M internal/app.go (+3 -1)\n" +
		"  A README.md (+10 -0)\n" +
		"Suggested scope: internal\n" +
		"Suggested tag: BE\n" +
		"Recent commits:\n" +
		"  abc1234 add readme\n"
	require.Equal(testInstance, expected, outputs.standardOutput.String())
}

func TestAnalyzeCommandYAMLOutput(testInstance *testing.T) {
	repositoryRoot := testInstance.TempDir()
	builder := AnalyzeCommandBuilder{
		ServicesProvider: testServicesProvider(newStagedRepositoryExecutor(), stubHistory{branch: "main"}, &stubContentGenerator{}),
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	outputs := prepareCommand(testInstance, command, repositoryRoot, "", "--output", "YAML")

	require.NoError(testInstance, command.Execute())

	var decoded commitmsg.RepositoryReport
	require.NoError(testInstance, yaml.Unmarshal(outputs.standardOutput.Bytes(), &decoded))
	require.Equal(testInstance, "main", decoded.Branch)
	require.True(testInstance, decoded.HasStagedChanges)
	require.Equal(testInstance, []string{"internal/app.go", "README.md"}, decoded.StagedFiles)
	require.Equal(testInstance, []gitrepo.StagedChange{
		{Path: "internal/app.go", Status: gitrepo.StatusModified, Additions: 3, Deletions: 1},
		{Path: "README.md", Status: gitrepo.StatusAdded, Additions: 10, Deletions: 0},
	}, decoded.Changes)
	require.Empty(testInstance, decoded.RecentCommits)
	require.Equal(testInstance, "internal", decoded.SuggestedScope)
	require.Equal(testInstance, commitformat.TagBackend, decoded.SuggestedTag)
	require.Contains(testInstance, outputs.standardOutput.String(), "suggested_tag: BE\n")
}

func TestAnalyzeCommandFailures(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		removeCommand   string
		expectedTarget  error
		expectedMessage string
	}{
		{
			name:            "unsupported_output",
			arguments:       []string{"--output", "json"},
			expectedMessage: `unsupported output format "json"`,
		},
		{
			name:           "not_a_repository",
			removeCommand:  "rev-parse --git-dir",
			expectedTarget: commitmsg.ErrNotARepository,
		},
		{
			name:            "numstat_failure",
			removeCommand:   "diff --staged --find-renames --numstat -z",
			expectedMessage: "StagedChangeStats operation failed",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := newStagedRepositoryExecutor()
			if len(testCase.removeCommand) > 0 {
				delete(executor.responses, testCase.removeCommand)
			}
			builder := AnalyzeCommandBuilder{
				ServicesProvider: testServicesProvider(executor, stubHistory{}, &stubContentGenerator{}),
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)
			outputs := prepareCommand(testInstance, command, testInstance.TempDir(), "", testCase.arguments...)

			executeError := command.Execute()
			require.Error(testInstance, executeError)
			if testCase.expectedTarget != nil {
				require.ErrorIs(testInstance, executeError, testCase.expectedTarget)
			}
			require.Contains(testInstance, executeError.Error(), testCase.expectedMessage)
			require.Empty(testInstance, outputs.standardOutput.String())
		})
	}
}
