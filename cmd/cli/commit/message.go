package commit

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	"github.com/tyemirov/aicommit/internal/commitmsg"
	flagutils "github.com/tyemirov/aicommit/internal/utils/flags"
)

const (
	generateCommandUseName          = "generate"
	generateCommandShortDescription = "Generate a commit message from staged changes"
	generateCommandLongDescription  = "generate asks the configured AI provider for a one-line commit message describing the staged diff, validates it against the commit format, and writes it to the repository's commit message file."
	generateCommandAliasLong        = "gen"
	generateCommandAliasShort       = "g"
	noClipboardFlagName             = "no-clipboard"
	noClipboardFlagUsage            = "Do not copy the message to the clipboard when autoFill is disabled"

	messageOutputTemplate           = "%s\n"
	validationWarningTemplate       = "warning: %s\n"
	appliedNoticeTemplate           = "Commit message written to %s\nCommit with: git commit -e -F %s\n"
	clipboardNoticeMessage          = "Commit message copied to clipboard\n"
	clipboardWarningTemplate        = "warning: %v\n"
	cancelledNoticeMessage          = "Commit message discarded\n"
	configurationHintTemplate       = "%w\nRun \"aicommit open-config\" to create or edit %s"
	generateCompletedLogMessage     = "generate command completed"
	generateAttemptsFieldConstant   = "attempts"
	generateProviderFieldConstant   = "provider"
	generateAppliedFieldConstant    = "applied"
	generateStateFieldConstant      = "state"
	clipboardFailedLogMessage       = "clipboard copy failed"
	generateRepositoryFieldConstant = "repository_root"
)

// GenerateCommandBuilder assembles the generate command.
type GenerateCommandBuilder struct {
	LoggerProvider   LoggerProvider
	ServicesProvider ServicesProvider
	Clipboard        commitmsg.ClipboardWriter
}

// Build constructs the generate command.
func (builder *GenerateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           generateCommandUseName,
		Short:         generateCommandShortDescription,
		Long:          generateCommandLongDescription,
		Aliases:       []string{generateCommandAliasLong, generateCommandAliasShort},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	command.Flags().Bool(noClipboardFlagName, false, noClipboardFlagUsage)

	return command, nil
}

func (builder *GenerateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	services, servicesError := resolveServices(builder.ServicesProvider, command, arguments)
	if servicesError != nil {
		return servicesError
	}
	logger := resolveLogger(builder.LoggerProvider)

	executionFlags, _ := flagutils.ResolveExecutionFlags(command)
	noClipboard, _, _ := flagutils.BoolFlag(command, noClipboardFlagName)

	result, generateError := services.Generator.Generate(command.Context(), commitmsg.Options{AssumeYes: executionFlags.AssumeYes})
	logger.Debug(
		generateCompletedLogMessage,
		zap.String(generateRepositoryFieldConstant, services.Repository.RepositoryRoot()),
		zap.String(generateProviderFieldConstant, result.Provider),
		zap.Int(generateAttemptsFieldConstant, result.Attempts),
		zap.Bool(generateAppliedFieldConstant, result.Applied),
		zap.String(generateStateFieldConstant, string(result.State)),
	)

	if generateError != nil {
		if errors.Is(generateError, commitmsg.ErrUserCancelled) {
			fmt.Fprint(command.ErrOrStderr(), cancelledNoticeMessage)
			return nil
		}
		if errors.Is(generateError, aiconfig.ErrInvalidConfiguration) {
			return fmt.Errorf(configurationHintTemplate, generateError, aiconfig.DefaultFilePath(services.Repository.RepositoryRoot()))
		}
		var applyError commitmsg.ApplyFailedError
		if !errors.As(generateError, &applyError) {
			return generateError
		}
	}

	fmt.Fprintf(command.OutOrStdout(), messageOutputTemplate, result.Message)
	for _, validationMessage := range result.Validation.Errors {
		fmt.Fprintf(command.ErrOrStderr(), validationWarningTemplate, validationMessage)
	}
	if generateError != nil {
		return generateError
	}

	if result.Applied {
		fmt.Fprintf(command.ErrOrStderr(), appliedNoticeTemplate, result.ApplyTarget, result.ApplyTarget)
		return nil
	}

	if noClipboard {
		return nil
	}
	presenter := commitmsg.ClipboardPresenter{Clipboard: builder.Clipboard}
	if presentError := presenter.Present(result.Message); presentError != nil {
		logger.Debug(clipboardFailedLogMessage, zap.Error(presentError))
		fmt.Fprintf(command.ErrOrStderr(), clipboardWarningTemplate, presentError)
		return nil
	}
	fmt.Fprint(command.ErrOrStderr(), clipboardNoticeMessage)
	return nil
}
