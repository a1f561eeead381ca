package commitmsg

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tyemirov/aicommit/internal/commitformat"
	"github.com/tyemirov/aicommit/internal/gitrepo"
)

// RecentCommitCountConstant bounds the history shown by Analyze.
const RecentCommitCountConstant = 3

// RepositoryReport summarizes the staged state of a repository.
type RepositoryReport struct {
	Branch           string                 `yaml:"branch"`
	HasStagedChanges bool                   `yaml:"has_staged_changes"`
	StagedFiles      []string               `yaml:"staged_files"`
	Changes          []gitrepo.StagedChange `yaml:"changes"`
	RecentCommits    []string               `yaml:"recent_commits"`
	SuggestedScope   string                 `yaml:"suggested_scope"`
	SuggestedTag     commitformat.Tag       `yaml:"suggested_tag"`
}

// Analyze gathers the report queries concurrently. Branch and history fall back to safe
// defaults; staged file and stat failures are returned.
func (generator Generator) Analyze(executionContext context.Context) (RepositoryReport, error) {
	if generator.Repository == nil {
		return RepositoryReport{}, ErrGeneratorNotConfigured
	}
	if !generator.Repository.IsRepository(executionContext) {
		return RepositoryReport{}, ErrNotARepository
	}

	var report RepositoryReport
	group, groupContext := errgroup.WithContext(executionContext)
	group.Go(func() error {
		report.Branch = generator.Repository.CurrentBranch(groupContext)
		return nil
	})
	group.Go(func() error {
		report.HasStagedChanges = generator.Repository.HasStagedChanges(groupContext)
		return nil
	})
	group.Go(func() error {
		stagedFiles, filesError := generator.Repository.StagedFiles(groupContext)
		report.StagedFiles = stagedFiles
		return filesError
	})
	group.Go(func() error {
		changes, statsError := generator.Repository.StagedChangeStats(groupContext)
		report.Changes = changes
		return statsError
	})
	group.Go(func() error {
		report.RecentCommits = generator.Repository.RecentCommits(groupContext, RecentCommitCountConstant)
		return nil
	})
	if waitError := group.Wait(); waitError != nil {
		return RepositoryReport{}, waitError
	}

	if report.StagedFiles == nil {
		report.StagedFiles = []string{}
	}
	if report.Changes == nil {
		report.Changes = []gitrepo.StagedChange{}
	}
	if report.RecentCommits == nil {
		report.RecentCommits = []string{}
	}
	report.SuggestedScope = commitformat.ExtractScope(report.StagedFiles)
	report.SuggestedTag = commitformat.DetermineTag(report.StagedFiles)
	return report, nil
}
