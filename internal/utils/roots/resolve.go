package roots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	flagutils "github.com/tyemirov/aicommit/internal/utils/flags"
)

const (
	homeDirectoryPrefixConstant        = "~"
	positionalRootsUnsupportedMessage  = "positional arguments are not supported; use --repository"
	emptyRootMessage                   = "repository root cannot be empty"
	homeDirectoryErrorTemplateConstant = "unable to resolve home directory: %w"
	absolutePathErrorTemplateConstant  = "unable to resolve repository root %s: %w"
)

// PositionalRootsUnsupportedError returns the canonical error when positional roots are supplied.
func PositionalRootsUnsupportedError() error {
	return errors.New(positionalRootsUnsupportedMessage)
}

// Resolve determines the working-copy root for a command from the repository flag, rejecting
// positional arguments. The result is absolute with a leading ~ expanded.
func Resolve(command *cobra.Command, positional []string) (string, error) {
	if len(positional) > 0 {
		return "", PositionalRootsUnsupportedError()
	}

	flagValue := flagutils.DefaultRepositoryRoot
	if command != nil {
		if value, _, flagError := flagutils.StringFlag(command, flagutils.RepositoryFlagName); flagError == nil {
			flagValue = value
		}
	}
	return Normalize(flagValue)
}

// Normalize expands a leading ~ and returns the absolute, cleaned path.
func Normalize(rawRoot string) (string, error) {
	trimmedRoot := strings.TrimSpace(rawRoot)
	if len(trimmedRoot) == 0 {
		return "", errors.New(emptyRootMessage)
	}

	if trimmedRoot == homeDirectoryPrefixConstant || strings.HasPrefix(trimmedRoot, homeDirectoryPrefixConstant+string(filepath.Separator)) {
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return "", fmt.Errorf(homeDirectoryErrorTemplateConstant, homeError)
		}
		trimmedRoot = filepath.Join(homeDirectory, strings.TrimPrefix(trimmedRoot, homeDirectoryPrefixConstant))
	}

	absoluteRoot, absoluteError := filepath.Abs(trimmedRoot)
	if absoluteError != nil {
		return "", fmt.Errorf(absolutePathErrorTemplateConstant, trimmedRoot, absoluteError)
	}
	return absoluteRoot, nil
}

// PositionalRootsUnsupportedMessage exposes the canonical positional-roots error text.
func PositionalRootsUnsupportedMessage() string {
	return positionalRootsUnsupportedMessage
}
