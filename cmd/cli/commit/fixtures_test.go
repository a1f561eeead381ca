package commit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	"github.com/tyemirov/aicommit/internal/backend"
	"github.com/tyemirov/aicommit/internal/backend/gemini"
	"github.com/tyemirov/aicommit/internal/execshell"
	flagutils "github.com/tyemirov/aicommit/internal/utils/flags"
)

const (
	testStagedDiff      = "diff --git a/internal/app.go b/internal/app.go\n@@ -1 +1 @@\n-old\n+new\n"
	testGeneratedHeader = "✨ feat(internal) [BE]: add login flow"
	testGeminiSettings  = `{"provider":"gemini","apis":{"gemini":{"apiKey":"test-key"}},"settings":{"autoFill":%t,"showPreview":%t}}`
)

type fakeGitExecutor struct {
	mutex       sync.Mutex
	responses   map[string]string
	invocations []string
}

func newStagedRepositoryExecutor() *fakeGitExecutor {
	return &fakeGitExecutor{responses: map[string]string{
		"rev-parse --git-dir":                           ".git\n",
		"diff --staged --name-only -z":                  "internal/app.go\x00README.md\x00",
		"diff --staged":                                 testStagedDiff,
		"diff --staged --find-renames --numstat -z":     "3\t1\tinternal/app.go\x0010\t0\tREADME.md\x00",
		"diff --staged --find-renames --name-status -z": "M\x00internal/app.go\x00A\x00README.md\x00",
		"rev-parse --git-path AI_COMMIT_EDITMSG":        ".git/AI_COMMIT_EDITMSG\n",
	}}
}

func (executor *fakeGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	key := strings.Join(details.Arguments, " ")
	executor.invocations = append(executor.invocations, key)
	output, known := executor.responses[key]
	if !known {
		return execshell.ExecutionResult{}, fmt.Errorf("unexpected git command %q", key)
	}
	return execshell.ExecutionResult{StandardOutput: output}, nil
}

type stubHistory struct {
	branch  string
	commits []string
}

func (history stubHistory) CurrentBranch(context.Context, string) (string, error) {
	return history.branch, nil
}

func (history stubHistory) RecentCommits(_ context.Context, _ string, count int) ([]string, error) {
	if len(history.commits) > count {
		return history.commits[:count], nil
	}
	return history.commits, nil
}

type stubContentGenerator struct {
	mutex    sync.Mutex
	response string
	prompts  []string
}

func (generator *stubContentGenerator) GenerateContent(_ context.Context, _ string, prompt string) (string, error) {
	generator.mutex.Lock()
	defer generator.mutex.Unlock()
	generator.prompts = append(generator.prompts, prompt)
	return generator.response, nil
}

func (generator *stubContentGenerator) promptCount() int {
	generator.mutex.Lock()
	defer generator.mutex.Unlock()
	return len(generator.prompts)
}

type recordingClipboard struct {
	unsupported bool
	written     []string
}

func (clipboard *recordingClipboard) Unsupported() bool {
	return clipboard.unsupported
}

func (clipboard *recordingClipboard) WriteAll(text string) error {
	clipboard.written = append(clipboard.written, text)
	return nil
}

func testServicesProvider(executor *fakeGitExecutor, history stubHistory, contentGenerator *stubContentGenerator) ServicesProvider {
	return func(command *cobra.Command, repositoryRoot string) (Services, error) {
		return NewServices(repositoryRoot, ServicesDependencies{
			GitExecutor:   executor,
			HistoryReader: history,
			BackendFactories: map[aiconfig.Provider]backend.Factory{
				aiconfig.ProviderGemini: func(apis aiconfig.APIs) backend.Backend {
					return gemini.NewWithClientFactory(apis.Gemini, func(context.Context, string) (gemini.ContentGenerator, error) {
						return contentGenerator, nil
					})
				},
			},
			Input:  command.InOrStdin(),
			Output: command.ErrOrStderr(),
		})
	}
}

func writeWorkspaceConfiguration(testInstance *testing.T, repositoryRoot string, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(repositoryRoot, ".vscode", "ai-commit.json")
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(configurationPath), 0o755))
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath
}

type commandOutputs struct {
	standardOutput bytes.Buffer
	standardError  bytes.Buffer
}

func prepareCommand(testInstance *testing.T, command *cobra.Command, repositoryRoot string, input string, arguments ...string) *commandOutputs {
	testInstance.Helper()
	flagutils.BindRepositoryFlag(command, flagutils.RepositoryFlagValues{Root: repositoryRoot}, flagutils.RepositoryFlagDefinition{
		Name:      flagutils.RepositoryFlagName,
		Shorthand: flagutils.RepositoryFlagShorthand,
		Enabled:   true,
	})
	flagutils.BindAssumeYesFlag(command, false)

	outputs := &commandOutputs{}
	command.SetOut(&outputs.standardOutput)
	command.SetErr(&outputs.standardError)
	command.SetIn(strings.NewReader(input))
	command.SetArgs(append([]string{}, arguments...))
	command.SetContext(context.Background())
	return outputs
}
