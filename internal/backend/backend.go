// Package backend defines the generation backend contract shared by the provider
// implementations and the selector that keeps one instance per provider.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/tyemirov/aicommit/internal/aiconfig"
)

const (
	backendNotConfiguredMessageConstant = "backend not configured"
	emptyResponseMessageConstant        = "empty response"
	notConfiguredTemplateConstant       = "%s service not configured. %s"
	backendErrorTemplateConstant        = "%s API error: %v"
	emptyResponseTemplateConstant       = "Empty response from %s API"
)

var (
	// ErrBackendNotConfigured indicates the backend lacks the credentials it needs.
	ErrBackendNotConfigured = errors.New(backendNotConfiguredMessageConstant)
	// ErrEmptyResponse indicates the provider answered without usable text.
	ErrEmptyResponse = errors.New(emptyResponseMessageConstant)
)

// Backend produces commit message text for a prompt.
type Backend interface {
	Name() string
	IsConfigured() bool
	Generate(executionContext context.Context, prompt string) (string, error)
	UpdateConfiguration(apis aiconfig.APIs)
}

// Factory constructs a backend from the current credentials.
type Factory func(apis aiconfig.APIs) Backend

// NotConfiguredError reports a Generate call on an unconfigured backend.
type NotConfiguredError struct {
	Provider    string
	Requirement string
}

// Error describes the missing configuration.
func (notConfiguredError NotConfiguredError) Error() string {
	return fmt.Sprintf(notConfiguredTemplateConstant, notConfiguredError.Provider, notConfiguredError.Requirement)
}

// Unwrap exposes ErrBackendNotConfigured.
func (notConfiguredError NotConfiguredError) Unwrap() error {
	return ErrBackendNotConfigured
}

// EmptyResponseError reports a provider answer without text.
type EmptyResponseError struct {
	Provider string
}

// Error describes the empty answer.
func (emptyResponseError EmptyResponseError) Error() string {
	return fmt.Sprintf(emptyResponseTemplateConstant, emptyResponseError.Provider)
}

// Unwrap exposes ErrEmptyResponse.
func (emptyResponseError EmptyResponseError) Unwrap() error {
	return ErrEmptyResponse
}

// BackendError wraps any provider failure with the provider display name.
type BackendError struct {
	Provider string
	Cause    error
}

// Error describes the provider failure.
func (backendError BackendError) Error() string {
	return fmt.Sprintf(backendErrorTemplateConstant, backendError.Provider, backendError.Cause)
}

// Unwrap exposes the underlying failure.
func (backendError BackendError) Unwrap() error {
	return backendError.Cause
}
