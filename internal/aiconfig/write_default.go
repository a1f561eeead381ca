package aiconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configurationDirectoryPermissions = 0o755
	configurationFilePermissions      = 0o600
	jsonIndentConstant                = "  "
	configurationExistsTemplate       = "configuration file %s already exists"
	writeConfigurationErrorTemplate   = "unable to write configuration file %s: %w"
	encodeConfigurationErrorTemplate  = "unable to encode default configuration: %w"
)

// ConfigurationExistsError reports a refusal to overwrite an existing document.
type ConfigurationExistsError struct {
	Path string
}

// Error describes the existing document.
func (existsError ConfigurationExistsError) Error() string {
	return fmt.Sprintf(configurationExistsTemplate, existsError.Path)
}

// DefaultFilePath returns <root>/.vscode/ai-commit.json.
func DefaultFilePath(repositoryRoot string) string {
	return CandidatePaths(repositoryRoot)[0]
}

// WriteDefault writes the default configuration as indented JSON into the editor settings
// directory. An existing document is kept unless force is set.
func WriteDefault(repositoryRoot string, force bool) (string, error) {
	targetPath := DefaultFilePath(repositoryRoot)
	if !force && fileExists(targetPath) {
		return targetPath, ConfigurationExistsError{Path: targetPath}
	}

	encoded, encodeError := json.MarshalIndent(DefaultConfiguration(), "", jsonIndentConstant)
	if encodeError != nil {
		return "", fmt.Errorf(encodeConfigurationErrorTemplate, encodeError)
	}
	encoded = append(encoded, '\n')

	if mkdirError := os.MkdirAll(filepath.Dir(targetPath), configurationDirectoryPermissions); mkdirError != nil {
		return "", fmt.Errorf(writeConfigurationErrorTemplate, targetPath, mkdirError)
	}
	if writeError := os.WriteFile(targetPath, encoded, configurationFilePermissions); writeError != nil {
		return "", fmt.Errorf(writeConfigurationErrorTemplate, targetPath, writeError)
	}
	return targetPath, nil
}
