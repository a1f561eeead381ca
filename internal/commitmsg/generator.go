// Package commitmsg drives commit message generation from staged changes: preconditions,
// prompt construction, the retry and timeout loop against the selected backend, format
// validation, the optional preview and the apply step.
package commitmsg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	"github.com/tyemirov/aicommit/internal/backend"
	"github.com/tyemirov/aicommit/internal/commitformat"
	"github.com/tyemirov/aicommit/internal/gitrepo"
)

const (
	backoffUnitConstant           = time.Second
	previewPromptTemplateConstant = "Generated commit message:\n%s\nUse this message? [y/N] "
	attemptFailedLogMessage       = "commit message attempt failed"
	generationStartedLogMessage   = "generating commit message"
	generationSucceededLogMessage = "commit message generated"
	validationWarningLogMessage   = "generated commit message does not match the required format"
	applyFailedLogMessage         = "commit message could not be applied"
	attemptFieldConstant          = "attempt"
	maxAttemptsFieldConstant      = "max_attempts"
	appliedLogMessage             = "commit message applied"
	providerFieldConstant         = "provider"
	validationErrorsFieldConstant = "validation_errors"
	messageFieldConstant          = "message"
	promptLengthFieldConstant     = "prompt_length"
	applyTargetFieldConstant      = "apply_target"
)

// State names a step of the generation pipeline.
type State string

// Pipeline states.
const (
	StateIdle                  State = "idle"
	StateCheckingPreconditions State = "checking preconditions"
	StateBuildingPrompt        State = "building prompt"
	StateGenerating            State = "generating"
	StateValidating            State = "validating"
	StateAwaitingApplyDecision State = "awaiting apply decision"
	StateApplying              State = "applying"
	StateDone                  State = "done"
	StateAborted               State = "aborted"
)

// RepositoryInspector answers the staged-change questions the generator needs.
type RepositoryInspector interface {
	IsRepository(executionContext context.Context) bool
	HasStagedChanges(executionContext context.Context) bool
	StagedDiff(executionContext context.Context) (string, error)
	StagedFiles(executionContext context.Context) ([]string, error)
	StagedChangeStats(executionContext context.Context) ([]gitrepo.StagedChange, error)
	CurrentBranch(executionContext context.Context) string
	RecentCommits(executionContext context.Context, count int) []string
}

// ConfigurationSource supplies the current configuration snapshot.
type ConfigurationSource interface {
	Load() aiconfig.Configuration
}

// BackendSelector resolves the backend for a configuration.
type BackendSelector interface {
	Select(configuration aiconfig.Configuration) (backend.Backend, error)
}

// ConfirmationPrompter asks the user to accept the previewed message.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// MessageApplier places the message where the next commit will pick it up and reports where.
type MessageApplier interface {
	Apply(executionContext context.Context, message string) (string, error)
}

// SleepFunc waits between attempts; it returns early with an error when the context ends.
type SleepFunc func(executionContext context.Context, duration time.Duration) error

// Options tune a single generation run.
type Options struct {
	AssumeYes bool
}

// Result describes a completed or partially completed run.
type Result struct {
	Message     string
	RawResponse string
	Validation  commitformat.ValidationResult
	Attempts    int
	Provider    string
	Applied     bool
	ApplyTarget string
	State       State
}

// Generator produces a commit message for the staged changes of one repository.
type Generator struct {
	Repository    RepositoryInspector
	Configuration ConfigurationSource
	Backends      BackendSelector
	Prompter      ConfirmationPrompter
	Applier       MessageApplier
	Logger        *zap.Logger
	Sleep         SleepFunc
}

// Generate runs the pipeline to completion. Aborts are returned as AbortError. A failed
// apply step returns the populated Result together with an ApplyFailedError.
func (generator Generator) Generate(executionContext context.Context, options Options) (Result, error) {
	result := Result{State: StateIdle}
	if generator.Repository == nil || generator.Configuration == nil || generator.Backends == nil {
		return abort(result, StateIdle, ErrGeneratorNotConfigured)
	}
	logger := generator.logger()

	result.State = StateCheckingPreconditions
	if !generator.Repository.IsRepository(executionContext) {
		return abort(result, StateCheckingPreconditions, ErrNotARepository)
	}
	if !generator.Repository.HasStagedChanges(executionContext) {
		return abort(result, StateCheckingPreconditions, gitrepo.ErrNoStagedChanges)
	}
	configuration := generator.Configuration.Load()
	if validationError := configuration.Validate(); validationError != nil {
		return abort(result, StateCheckingPreconditions, validationError)
	}
	selectedBackend, selectError := generator.Backends.Select(configuration)
	if selectError != nil {
		return abort(result, StateCheckingPreconditions, selectError)
	}
	result.Provider = selectedBackend.Name()
	if !selectedBackend.IsConfigured() {
		return abort(result, StateCheckingPreconditions, fmt.Errorf(backendUnavailableTemplateConstant, selectedBackend.Name(), backend.ErrBackendNotConfigured))
	}

	result.State = StateBuildingPrompt
	stagedDiff, diffError := generator.Repository.StagedDiff(executionContext)
	if diffError != nil {
		return abort(result, StateBuildingPrompt, diffError)
	}
	prompt := commitformat.CreatePrompt(stagedDiff, string(configuration.CustomPrompt))

	result.State = StateGenerating
	logger.Info(generationStartedLogMessage, zap.String(providerFieldConstant, result.Provider), zap.Int(promptLengthFieldConstant, len(prompt)), zap.Int(maxAttemptsFieldConstant, configuration.Settings.MaxRetries))
	rawResponse, attempts, generationError := generator.generateWithRetries(executionContext, selectedBackend, prompt, configuration)
	result.Attempts = attempts
	if generationError != nil {
		return abort(result, StateGenerating, generationError)
	}
	result.RawResponse = rawResponse

	result.State = StateValidating
	result.Message = FirstLine(rawResponse)
	result.Validation = commitformat.ValidateFormat(result.Message)
	if !result.Validation.Valid {
		logger.Warn(validationWarningLogMessage, zap.String(messageFieldConstant, result.Message), zap.Strings(validationErrorsFieldConstant, result.Validation.Errors))
	}
	logger.Info(generationSucceededLogMessage, zap.String(messageFieldConstant, result.Message), zap.Int(attemptFieldConstant, attempts))

	result.State = StateAwaitingApplyDecision
	if configuration.Settings.ShowPreview && !options.AssumeYes {
		if generator.Prompter == nil {
			return abort(result, StateAwaitingApplyDecision, ErrPrompterNotConfigured)
		}
		accepted, promptError := generator.Prompter.Confirm(fmt.Sprintf(previewPromptTemplateConstant, result.Message))
		if promptError != nil {
			return abort(result, StateAwaitingApplyDecision, promptError)
		}
		if !accepted {
			return abort(result, StateAwaitingApplyDecision, ErrUserCancelled)
		}
	}

	if !configuration.Settings.AutoFill {
		result.State = StateDone
		return result, nil
	}

	result.State = StateApplying
	if generator.Applier == nil {
		return result, ApplyFailedError{Cause: ErrApplierNotConfigured}
	}
	applyTarget, applyError := generator.Applier.Apply(executionContext, result.Message)
	if applyError != nil {
		logger.Warn(applyFailedLogMessage, zap.Error(applyError))
		return result, ApplyFailedError{Cause: applyError}
	}
	result.Applied = true
	result.ApplyTarget = applyTarget
	logger.Debug(appliedLogMessage, zap.String(applyTargetFieldConstant, applyTarget))

	result.State = StateDone
	return result, nil
}

// generateWithRetries returns the raw backend text and the number of attempts issued.
func (generator Generator) generateWithRetries(executionContext context.Context, selectedBackend backend.Backend, prompt string, configuration aiconfig.Configuration) (string, int, error) {
	maxAttempts := configuration.Settings.MaxRetries
	timeout := configuration.Timeout()
	logger := generator.logger()

	var lastError error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, attemptError := generator.attempt(executionContext, selectedBackend, prompt, timeout)
		if attemptError == nil && len(strings.TrimSpace(text)) == 0 {
			attemptError = backend.EmptyResponseError{Provider: selectedBackend.Name()}
		}
		if attemptError == nil {
			return text, attempt, nil
		}
		if errors.Is(attemptError, backend.ErrBackendNotConfigured) {
			return "", attempt, attemptError
		}
		if contextError := executionContext.Err(); contextError != nil {
			return "", attempt, contextError
		}

		lastError = attemptError
		logger.Warn(attemptFailedLogMessage, zap.Int(attemptFieldConstant, attempt), zap.Int(maxAttemptsFieldConstant, maxAttempts), zap.Error(attemptError))
		if attempt == maxAttempts {
			break
		}
		if sleepError := generator.sleep()(executionContext, time.Duration(attempt)*backoffUnitConstant); sleepError != nil {
			return "", attempt, sleepError
		}
	}
	return "", maxAttempts, GenerationFailedError{Attempts: maxAttempts, LastError: lastError}
}

type attemptOutcome struct {
	text string
	err  error
}

// attempt races one Generate call against the timeout. A call that loses the race keeps
// running in the background; its outcome lands in the buffered channel and is dropped.
func (generator Generator) attempt(executionContext context.Context, selectedBackend backend.Backend, prompt string, timeout time.Duration) (string, error) {
	outcomes := make(chan attemptOutcome, 1)
	go func() {
		text, generateError := selectedBackend.Generate(executionContext, prompt)
		outcomes <- attemptOutcome{text: text, err: generateError}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case outcome := <-outcomes:
		return outcome.text, outcome.err
	case <-timer.C:
		return "", AttemptTimeoutError{Timeout: timeout}
	case <-executionContext.Done():
		return "", executionContext.Err()
	}
}

func (generator Generator) logger() *zap.Logger {
	if generator.Logger == nil {
		return zap.NewNop()
	}
	return generator.Logger
}

func (generator Generator) sleep() SleepFunc {
	if generator.Sleep == nil {
		return SleepWithContext
	}
	return generator.Sleep
}

// SleepWithContext waits for the duration or until the context ends.
func SleepWithContext(executionContext context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-executionContext.Done():
		return executionContext.Err()
	}
}

// FirstLine returns the first line of the text, trimmed.
func FirstLine(text string) string {
	trimmed := strings.TrimSpace(text)
	if newlineIndex := strings.IndexAny(trimmed, "\r\n"); newlineIndex >= 0 {
		trimmed = trimmed[:newlineIndex]
	}
	return strings.TrimSpace(trimmed)
}

func abort(result Result, state State, reason error) (Result, error) {
	result.State = StateAborted
	return result, AbortError{State: state, Reason: reason}
}
