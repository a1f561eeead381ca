package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	gitCommandNameStringConstant              = "git"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandNameMissingMessageConstant         = "shell command name not provided"
	commandStartMessageConstant               = "git query starting"
	commandSuccessMessageConstant             = "git query completed"
	commandFailureMessageConstant             = "git query returned non-zero status"
	commandRunnerErrorMessageConstant         = "git query could not run"
	commandNameFieldNameConstant              = "command"
	commandArgumentsFieldNameConstant         = "arguments"
	workingDirectoryFieldNameConstant         = "working_directory"
	exitCodeFieldNameConstant                 = "exit_code"
	standardErrorFieldNameConstant            = "stderr"
	outputBytesFieldNameConstant              = "output_bytes"
	durationFieldNameConstant                 = "duration"
	maximumFailureDetailLinesConstant         = 3
	commandFailureErrorMessageTemplate        = "%s command exited with code %d"
	commandExecutionErrorMessageTemplate      = "%s command execution failed"
	optionalLocksEnvironmentVariableConstant  = "GIT_OPTIONAL_LOCKS"
	terminalPromptEnvironmentVariableConstant = "GIT_TERMINAL_PROMPT"
	disabledEnvironmentValueConstant          = "0"
)

// CommandName identifies a supported executable name.
type CommandName string

// CommandGit is the only executable the repository inspector runs.
const CommandGit CommandName = CommandName(gitCommandNameStringConstant)

// CommandDetails describes command invocation properties.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand represents a fully qualified command invocation.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures observable command results.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandNameMissing indicates the command name was not provided.
	ErrCommandNameMissing = errors.New(commandNameMissingMessageConstant)
)

// CommandFailedError reports a command that exited with a non-zero code. The message carries
// the first lines of stderr (or stdout) so "not a git repository" style diagnostics surface.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

func (commandError CommandFailedError) Error() string {
	baseMessage := fmt.Sprintf(commandFailureErrorMessageTemplate, commandError.Command.Name, commandError.Result.ExitCode)
	if len(commandError.Command.Details.Arguments) > 0 {
		baseMessage = fmt.Sprintf("%s (%s)", baseMessage, strings.Join(commandError.Command.Details.Arguments, " "))
	}
	if detailLines := failureDetail(commandError.Result); len(detailLines) > 0 {
		baseMessage = fmt.Sprintf("%s: %s", baseMessage, strings.Join(detailLines, " | "))
	}
	return baseMessage
}

// CommandExecutionError wraps failures to start or finish the process, including context
// cancellation.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplate, executionError.Command.Name)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs git queries for the repository inspector and logs each one at debug
// level, either as structured fields or as a single readable line.
type ShellExecutor struct {
	commandRunner        CommandRunner
	logger               *zap.Logger
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
	clock                func() time.Time
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		commandRunner:        commandRunner,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
		messageFormatter:     CommandMessageFormatter{},
		clock:                time.Now,
	}, nil
}

// Execute runs the provided shell command and logs lifecycle events.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(command.Name) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	if executor.humanReadableLogging {
		executor.logger.Debug(executor.messageFormatter.BuildStartedMessage(command))
	} else {
		executor.logger.Debug(commandStartMessageConstant, executor.commandFields(command)...)
	}

	startedAt := executor.clock()
	executionResult, runnerError := executor.commandRunner.Run(executionContext, command)
	elapsed := executor.clock().Sub(startedAt)

	switch {
	case runnerError != nil:
		if executor.humanReadableLogging {
			executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(command, runnerError))
		} else {
			executor.logger.Error(commandRunnerErrorMessageConstant, append(executor.commandFields(command), zap.Error(runnerError))...)
		}
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runnerError}
	case executionResult.ExitCode != 0:
		if executor.humanReadableLogging {
			executor.logger.Warn(executor.messageFormatter.BuildFailureMessage(command, executionResult))
		} else {
			executor.logger.Warn(commandFailureMessageConstant, append(executor.commandFields(command),
				zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
				zap.String(standardErrorFieldNameConstant, executionResult.StandardError),
			)...)
		}
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	if executor.humanReadableLogging {
		executor.logger.Debug(executor.messageFormatter.BuildSuccessMessage(command))
	} else {
		// Staged diffs can be large; only the size is logged.
		executor.logger.Debug(commandSuccessMessageConstant, append(executor.commandFields(command),
			zap.Int(outputBytesFieldNameConstant, len(executionResult.StandardOutput)),
			zap.Duration(durationFieldNameConstant, elapsed),
		)...)
	}
	return executionResult, nil
}

// ExecuteGit runs a read-only git query with optional index locks and terminal prompts
// disabled. Caller-supplied variables take precedence.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	environment := map[string]string{
		optionalLocksEnvironmentVariableConstant:  disabledEnvironmentValueConstant,
		terminalPromptEnvironmentVariableConstant: disabledEnvironmentValueConstant,
	}
	for name, value := range details.EnvironmentVariables {
		environment[name] = value
	}
	details.EnvironmentVariables = environment
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

func (executor *ShellExecutor) commandFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Strings(commandArgumentsFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory),
	}
}

func failureDetail(result ExecutionResult) []string {
	detail := strings.TrimSpace(result.StandardError)
	if len(detail) == 0 {
		detail = strings.TrimSpace(result.StandardOutput)
	}
	if len(detail) == 0 {
		return nil
	}
	lines := strings.Split(detail, "\n")
	if len(lines) > maximumFailureDetailLinesConstant {
		lines = lines[:maximumFailureDetailLinesConstant]
	}
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); len(trimmed) > 0 {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
