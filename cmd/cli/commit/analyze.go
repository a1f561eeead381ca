package commit

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tyemirov/aicommit/internal/commitmsg"
	flagutils "github.com/tyemirov/aicommit/internal/utils/flags"
)

const (
	analyzeCommandUseName          = "analyze"
	analyzeCommandShortDescription = "Summarize the staged changes of the repository"
	analyzeCommandLongDescription  = "analyze reports the current branch, staged files with line counts, recent commits, and the scope and tag a commit message would most likely use."
	analyzeCommandAlias            = "analyze-repository"
	outputFlagName                 = "output"
	outputFlagUsage                = "Output format (text or yaml)"
	outputFormatText               = "text"
	outputFormatYAML               = "yaml"
	outputFormatSubject            = "output format"
	encodeReportErrorTemplate      = "unable to encode repository report: %w"

	branchLineTemplate         = "Branch: %s\n"
	stagedSummaryTemplate      = "Staged files: %d\n"
	stagedChangeLineTemplate   = "  %s %s (+%d -%d)\n"
	stagedFileLineTemplate     = "  %s\n"
	noStagedChangesLine        = "Staged files: none\n"
	suggestedScopeLineTemplate = "Suggested scope: %s\n"
	suggestedTagLineTemplate   = "Suggested tag: %s\n"
	recentCommitsHeaderLine    = "Recent commits:\n"
	recentCommitLineTemplate   = "  %s\n"
	yamlIndentConstant         = 2
)

// AnalyzeCommandBuilder assembles the analyze command.
type AnalyzeCommandBuilder struct {
	ServicesProvider ServicesProvider
}

// Build constructs the analyze command.
func (builder *AnalyzeCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           analyzeCommandUseName,
		Short:         analyzeCommandShortDescription,
		Long:          analyzeCommandLongDescription,
		Aliases:       []string{analyzeCommandAlias},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	command.Flags().String(outputFlagName, outputFormatText, outputFlagUsage)

	return command, nil
}

func (builder *AnalyzeCommandBuilder) run(command *cobra.Command, arguments []string) error {
	outputFormat, formatError := flagutils.ChoiceFlag(command, outputFlagName, outputFormatSubject, outputFormatText, outputFormatYAML)
	if formatError != nil {
		return formatError
	}

	services, servicesError := resolveServices(builder.ServicesProvider, command, arguments)
	if servicesError != nil {
		return servicesError
	}

	report, analyzeError := services.Generator.Analyze(command.Context())
	if analyzeError != nil {
		return analyzeError
	}

	if outputFormat == outputFormatYAML {
		return writeReportYAML(command.OutOrStdout(), report)
	}
	writeReportText(command.OutOrStdout(), report)
	return nil
}

func writeReportYAML(output io.Writer, report commitmsg.RepositoryReport) error {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(report); encodeError != nil {
		return fmt.Errorf(encodeReportErrorTemplate, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(encodeReportErrorTemplate, closeError)
	}
	return nil
}

func writeReportText(output io.Writer, report commitmsg.RepositoryReport) {
	fmt.Fprintf(output, branchLineTemplate, report.Branch)

	if !report.HasStagedChanges {
		fmt.Fprint(output, noStagedChangesLine)
	} else {
		fmt.Fprintf(output, stagedSummaryTemplate, len(report.StagedFiles))
		if len(report.Changes) > 0 {
			for _, change := range report.Changes {
				fmt.Fprintf(output, stagedChangeLineTemplate, change.Status, change.Path, change.Additions, change.Deletions)
			}
		} else {
			for _, stagedFile := range report.StagedFiles {
				fmt.Fprintf(output, stagedFileLineTemplate, stagedFile)
			}
		}
		fmt.Fprintf(output, suggestedScopeLineTemplate, report.SuggestedScope)
		fmt.Fprintf(output, suggestedTagLineTemplate, report.SuggestedTag)
	}

	if len(report.RecentCommits) > 0 {
		fmt.Fprint(output, recentCommitsHeaderLine)
		for _, recentCommit := range report.RecentCommits {
			fmt.Fprintf(output, recentCommitLineTemplate, recentCommit)
		}
	}
}
