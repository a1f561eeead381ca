package commit

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	flagutils "github.com/tyemirov/aicommit/internal/utils/flags"
)

const (
	openConfigCommandUseName          = "open-config"
	openConfigCommandShortDescription = "Show or create the workspace AI Commit configuration"
	openConfigCommandLongDescription  = "open-config prints the ai-commit.json document that applies to the repository, creating .vscode/ai-commit.json with default values when none exists."
	openConfigCommandAlias            = "config"
	forceFlagName                     = "force"
	forceFlagUsage                    = "Overwrite .vscode/ai-commit.json with the default configuration"

	configurationPathTemplate        = "Configuration file: %s\n"
	configurationCreatedTemplate     = "Created default configuration at %s\n"
	configurationContentTemplate     = "%s"
	configurationReadErrorTemplate   = "unable to read configuration file %s: %w"
	configurationInvalidTemplate     = "warning: %v\n"
	configurationUnparsedTemplate    = "warning: %s could not be parsed; defaults are in effect\n"
	configurationCreatedLogMessage   = "default configuration written"
	configurationPathFieldConstant   = "path"
	configurationForcedFieldConstant = "force"
)

// OpenConfigCommandBuilder assembles the open-config command.
type OpenConfigCommandBuilder struct {
	LoggerProvider   LoggerProvider
	ServicesProvider ServicesProvider
}

// Build constructs the open-config command.
func (builder *OpenConfigCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           openConfigCommandUseName,
		Short:         openConfigCommandShortDescription,
		Long:          openConfigCommandLongDescription,
		Aliases:       []string{openConfigCommandAlias},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	command.Flags().Bool(forceFlagName, false, forceFlagUsage)

	return command, nil
}

func (builder *OpenConfigCommandBuilder) run(command *cobra.Command, arguments []string) error {
	services, servicesError := resolveServices(builder.ServicesProvider, command, arguments)
	if servicesError != nil {
		return servicesError
	}
	logger := resolveLogger(builder.LoggerProvider)
	force, _, _ := flagutils.BoolFlag(command, forceFlagName)

	holder := services.Configuration
	holder.Load()
	configurationPath := holder.Path()

	if len(configurationPath) == 0 || force {
		writtenPath, writeError := holder.CreateDefaultFile(force)
		var existsError aiconfig.ConfigurationExistsError
		switch {
		case writeError == nil:
			logger.Info(configurationCreatedLogMessage, zap.String(configurationPathFieldConstant, writtenPath), zap.Bool(configurationForcedFieldConstant, force))
			fmt.Fprintf(command.ErrOrStderr(), configurationCreatedTemplate, writtenPath)
		case errors.As(writeError, &existsError):
			writtenPath = existsError.Path
			fmt.Fprintf(command.ErrOrStderr(), configurationUnparsedTemplate, existsError.Path)
		default:
			return writeError
		}
		configurationPath = writtenPath
	}

	content, readError := os.ReadFile(configurationPath)
	if readError != nil {
		return fmt.Errorf(configurationReadErrorTemplate, configurationPath, readError)
	}

	fmt.Fprintf(command.OutOrStdout(), configurationPathTemplate, configurationPath)
	fmt.Fprintf(command.OutOrStdout(), configurationContentTemplate, content)

	if validationError := holder.Reload().Validate(); validationError != nil {
		fmt.Fprintf(command.ErrOrStderr(), configurationInvalidTemplate, validationError)
	}
	return nil
}
