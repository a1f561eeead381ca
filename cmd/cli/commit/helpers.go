package commit

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	"github.com/tyemirov/aicommit/internal/backend"
	"github.com/tyemirov/aicommit/internal/backend/bedrock"
	"github.com/tyemirov/aicommit/internal/backend/gemini"
	"github.com/tyemirov/aicommit/internal/commitmsg"
	"github.com/tyemirov/aicommit/internal/execshell"
	"github.com/tyemirov/aicommit/internal/gitrepo"
	"github.com/tyemirov/aicommit/internal/prompt"
	"github.com/tyemirov/aicommit/internal/utils"
	rootutils "github.com/tyemirov/aicommit/internal/utils/roots"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ServicesProvider builds the collaborators bound to one working copy for a command run.
type ServicesProvider func(command *cobra.Command, repositoryRoot string) (Services, error)

// Services bundles the collaborators bound to one working copy.
type Services struct {
	Repository    *gitrepo.Inspector
	Configuration *aiconfig.Holder
	Generator     commitmsg.Generator
}

// ServicesDependencies carries the optional overrides used by NewServices. Nil fields fall
// back to the production implementations.
type ServicesDependencies struct {
	Logger               *zap.Logger
	HumanReadableLogging bool
	GitExecutor          gitrepo.GitCommandExecutor
	HistoryReader        gitrepo.HistoryReader
	BackendFactories     map[aiconfig.Provider]backend.Factory
	Input                io.Reader
	Output               io.Writer
}

// DefaultBackendFactories maps every supported provider to its backend constructor.
func DefaultBackendFactories() map[aiconfig.Provider]backend.Factory {
	return map[aiconfig.Provider]backend.Factory{
		aiconfig.ProviderGemini:  gemini.Factory,
		aiconfig.ProviderBedrock: bedrock.Factory,
	}
}

// NewServices wires the inspector, configuration holder, backend selector, prompter and
// commit message applier for repositoryRoot.
func NewServices(repositoryRoot string, dependencies ServicesDependencies) (Services, error) {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gitExecutor := dependencies.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), dependencies.HumanReadableLogging)
		if executorError != nil {
			return Services{}, executorError
		}
		gitExecutor = shellExecutor
	}

	inspector, inspectorError := gitrepo.NewInspector(gitExecutor, dependencies.HistoryReader, repositoryRoot)
	if inspectorError != nil {
		return Services{}, inspectorError
	}

	backendFactories := dependencies.BackendFactories
	if backendFactories == nil {
		backendFactories = DefaultBackendFactories()
	}

	input := dependencies.Input
	if input == nil {
		input = os.Stdin
	}
	output := dependencies.Output
	if output == nil {
		output = os.Stderr
	}

	holder := aiconfig.NewHolder(repositoryRoot, logger)
	generator := commitmsg.Generator{
		Repository:    inspector,
		Configuration: holder,
		Backends:      backend.NewSelector(backendFactories),
		Prompter:      prompt.NewIOConfirmationPrompter(input, output),
		Applier:       commitmsg.CommitMessageFileApplier{Paths: inspector},
		Logger:        logger,
	}

	return Services{Repository: inspector, Configuration: holder, Generator: generator}, nil
}

// resolveRepositoryRoot prefers the root recorded in the command context and falls back to
// the repository flag.
func resolveRepositoryRoot(command *cobra.Command, arguments []string) (string, error) {
	if len(arguments) > 0 {
		return "", rootutils.PositionalRootsUnsupportedError()
	}
	if command != nil {
		if repositoryRoot, available := utils.NewCommandContextAccessor().RepositoryRoot(command.Context()); available {
			return repositoryRoot, nil
		}
	}
	return rootutils.Resolve(command, arguments)
}

func resolveServices(provider ServicesProvider, command *cobra.Command, arguments []string) (Services, error) {
	repositoryRoot, rootError := resolveRepositoryRoot(command, arguments)
	if rootError != nil {
		return Services{}, rootError
	}
	if provider == nil {
		return NewServices(repositoryRoot, ServicesDependencies{Input: command.InOrStdin(), Output: command.ErrOrStderr()})
	}
	return provider(command, repositoryRoot)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
