package utils

import (
	"context"
	"strings"
)

type commandContextKey string

const (
	repositoryRootContextKey commandContextKey = "repositoryRoot"
	executionFlagsContextKey commandContextKey = "executionFlags"
)

// ExecutionFlags captures the --yes modifier and whether the user set it explicitly.
type ExecutionFlags struct {
	AssumeYes    bool
	AssumeYesSet bool
}

// CommandContextAccessor carries the values resolved by the root command's pre-run hook
// (working-copy root, execution flags) down to subcommands.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithRepositoryRoot attaches the working-copy root when it is non-blank.
func (accessor CommandContextAccessor) WithRepositoryRoot(parentContext context.Context, repositoryRoot string) context.Context {
	trimmedRoot := strings.TrimSpace(repositoryRoot)
	if len(trimmedRoot) == 0 {
		return contextOrBackground(parentContext)
	}
	return context.WithValue(contextOrBackground(parentContext), repositoryRootContextKey, trimmedRoot)
}

// WithExecutionFlags attaches execution flag values to the provided context.
func (accessor CommandContextAccessor) WithExecutionFlags(parentContext context.Context, flags ExecutionFlags) context.Context {
	return context.WithValue(contextOrBackground(parentContext), executionFlagsContextKey, flags)
}

// RepositoryRoot extracts the working-copy root from the provided context.
func (accessor CommandContextAccessor) RepositoryRoot(executionContext context.Context) (string, bool) {
	return lookupContextValue[string](executionContext, repositoryRootContextKey)
}

// ExecutionFlags extracts execution flag values from the provided context.
func (accessor CommandContextAccessor) ExecutionFlags(executionContext context.Context) (ExecutionFlags, bool) {
	return lookupContextValue[ExecutionFlags](executionContext, executionFlagsContextKey)
}

func lookupContextValue[Value any](executionContext context.Context, key commandContextKey) (Value, bool) {
	var zero Value
	if executionContext == nil {
		return zero, false
	}
	value, available := executionContext.Value(key).(Value)
	if !available {
		return zero, false
	}
	return value, true
}

func contextOrBackground(parentContext context.Context) context.Context {
	if parentContext == nil {
		return context.Background()
	}
	return parentContext
}
