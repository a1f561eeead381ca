package commitmsg

import (
	"errors"
	"fmt"
	"time"
)

const (
	notARepositoryMessageConstant         = "not a git repository"
	userCancelledMessageConstant          = "commit message rejected"
	generatorNotConfiguredMessageConstant = "commit message generator is not configured"
	applierNotConfiguredMessageConstant   = "commit message applier is not configured"
	prompterNotConfiguredMessageConstant  = "confirmation prompter is not configured"
	abortErrorTemplateConstant            = "commit message generation aborted while %s: %v"
	generationFailedTemplateConstant      = "failed to generate commit message after %d attempt(s): %v"
	attemptTimeoutTemplateConstant        = "request timed out after %s"
	applyFailedTemplateConstant           = "unable to apply commit message: %v"
	backendUnavailableTemplateConstant    = "%s service is not properly configured: %w"
)

var (
	// ErrNotARepository indicates the working copy is not under version control.
	ErrNotARepository = errors.New(notARepositoryMessageConstant)
	// ErrUserCancelled indicates the preview was declined.
	ErrUserCancelled = errors.New(userCancelledMessageConstant)
	// ErrGeneratorNotConfigured indicates a required collaborator is missing.
	ErrGeneratorNotConfigured = errors.New(generatorNotConfiguredMessageConstant)
	// ErrApplierNotConfigured indicates autoFill was requested without an applier.
	ErrApplierNotConfigured = errors.New(applierNotConfiguredMessageConstant)
	// ErrPrompterNotConfigured indicates a preview was requested without a prompter.
	ErrPrompterNotConfigured = errors.New(prompterNotConfiguredMessageConstant)
)

// AbortError reports the state in which generation stopped and why.
type AbortError struct {
	State  State
	Reason error
}

// Error describes the abort.
func (abortError AbortError) Error() string {
	return fmt.Sprintf(abortErrorTemplateConstant, abortError.State, abortError.Reason)
}

// Unwrap exposes the abort reason.
func (abortError AbortError) Unwrap() error {
	return abortError.Reason
}

// GenerationFailedError reports retry exhaustion.
type GenerationFailedError struct {
	Attempts  int
	LastError error
}

// Error describes the last failure.
func (failedError GenerationFailedError) Error() string {
	return fmt.Sprintf(generationFailedTemplateConstant, failedError.Attempts, failedError.LastError)
}

// Unwrap exposes the last attempt failure.
func (failedError GenerationFailedError) Unwrap() error {
	return failedError.LastError
}

// AttemptTimeoutError reports an attempt that outlived the configured timeout.
type AttemptTimeoutError struct {
	Timeout time.Duration
}

// Error describes the timeout.
func (timeoutError AttemptTimeoutError) Error() string {
	return fmt.Sprintf(attemptTimeoutTemplateConstant, timeoutError.Timeout)
}

// ApplyFailedError reports a failed apply step. Generation is not retried.
type ApplyFailedError struct {
	Cause error
}

// Error describes the apply failure.
func (applyError ApplyFailedError) Error() string {
	return fmt.Sprintf(applyFailedTemplateConstant, applyError.Cause)
}

// Unwrap exposes the underlying failure.
func (applyError ApplyFailedError) Unwrap() error {
	return applyError.Cause
}
