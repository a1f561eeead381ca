package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	commitcmd "github.com/tyemirov/aicommit/cmd/cli/commit"
)

func (application *Application) registerCommands(cobraCommand *cobra.Command) {
	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	generateBuilder := commitcmd.GenerateCommandBuilder{
		LoggerProvider:   loggerProvider,
		ServicesProvider: application.buildServices,
		Clipboard:        application.clipboard,
	}
	if generateCommand, generateBuildError := generateBuilder.Build(); generateBuildError == nil {
		cobraCommand.AddCommand(generateCommand)
	}

	openConfigBuilder := commitcmd.OpenConfigCommandBuilder{
		LoggerProvider:   loggerProvider,
		ServicesProvider: application.buildServices,
	}
	if openConfigCommand, openConfigBuildError := openConfigBuilder.Build(); openConfigBuildError == nil {
		cobraCommand.AddCommand(openConfigCommand)
	}

	analyzeBuilder := commitcmd.AnalyzeCommandBuilder{
		ServicesProvider: application.buildServices,
	}
	if analyzeCommand, analyzeBuildError := analyzeBuilder.Build(); analyzeBuildError == nil {
		cobraCommand.AddCommand(analyzeCommand)
	}
}

// buildServices binds the per-repository collaborators to the initialized logger and the
// command's terminal streams.
func (application *Application) buildServices(command *cobra.Command, repositoryRoot string) (commitcmd.Services, error) {
	dependencies := application.servicesDependencies
	dependencies.Logger = application.logger
	dependencies.HumanReadableLogging = application.humanReadableLoggingEnabled()
	if dependencies.Input == nil {
		dependencies.Input = command.InOrStdin()
	}
	if dependencies.Output == nil {
		dependencies.Output = command.ErrOrStderr()
	}
	return commitcmd.NewServices(repositoryRoot, dependencies)
}

func appendUnique(values []string, candidates ...string) []string {
	result := append([]string{}, values...)
	for _, candidate := range candidates {
		trimmedCandidate := strings.TrimSpace(candidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		duplicate := false
		for _, existing := range result {
			if existing == trimmedCandidate {
				duplicate = true
				break
			}
		}
		if !duplicate {
			result = append(result, trimmedCandidate)
		}
	}
	return result
}
