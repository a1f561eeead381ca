package cli

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
)

const (
	embeddedConfigurationTypeConstant            = "yaml"
	userConfigurationDirectoryNameConstant       = "aicommit"
	legacyUserConfigurationDirectoryNameConstant = ".aicommit"
)

//go:embed defaults.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns the CLI defaults compiled into the binary and their format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfiguration...), embeddedConfigurationTypeConstant
}

// ApplicationConfiguration describes the CLI preferences file. Workspace AI settings live in
// ai-commit.json and are loaded per repository.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
}

// ApplicationCommonConfiguration stores logging and execution defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	AssumeYes bool   `mapstructure:"assume_yes"`
}

// resolveConfigurationSearchPaths honors AICOMMIT_CONFIG_SEARCH_PATH and otherwise lists
// $XDG_CONFIG_HOME/aicommit, the platform user configuration directory and ~/.aicommit.
func resolveConfigurationSearchPaths() []string {
	if overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant)); len(overrideValue) > 0 {
		overridePaths := make([]string, 0)
		for _, candidatePath := range filepath.SplitList(overrideValue) {
			if trimmedPath := strings.TrimSpace(candidatePath); len(trimmedPath) > 0 {
				overridePaths = append(overridePaths, trimmedPath)
			}
		}
		if len(overridePaths) > 0 {
			return overridePaths
		}
	}

	searchPaths := make([]string, 0, 3)
	if xdgConfigHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariableConstant)); len(xdgConfigHome) > 0 {
		searchPaths = appendUnique(searchPaths, filepath.Join(xdgConfigHome, userConfigurationDirectoryNameConstant))
	}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = appendUnique(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant))
	}
	if userHomeDirectory, homeError := os.UserHomeDir(); homeError == nil {
		searchPaths = appendUnique(searchPaths, filepath.Join(userHomeDirectory, legacyUserConfigurationDirectoryNameConstant))
	}
	return searchPaths
}
