package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	abbreviatedHashLengthConstant = 7
	oneLineSummaryTemplate        = "%s %s"
	openRepositoryErrorTemplate   = "open repository %s: %w"
	resolveHeadErrorTemplate      = "resolve HEAD: %w"
	readHistoryErrorTemplate      = "read history: %w"
)

// HistoryReader reads branch and commit metadata without invoking the git executable.
type HistoryReader interface {
	CurrentBranch(executionContext context.Context, repositoryRoot string) (string, error)
	RecentCommits(executionContext context.Context, repositoryRoot string, count int) ([]string, error)
}

// GoGitHistoryReader reads repository objects through go-git.
type GoGitHistoryReader struct{}

// NewGoGitHistoryReader constructs the default HistoryReader.
func NewGoGitHistoryReader() GoGitHistoryReader {
	return GoGitHistoryReader{}
}

// CurrentBranch returns the short name of HEAD; a detached HEAD reads as "HEAD".
func (reader GoGitHistoryReader) CurrentBranch(executionContext context.Context, repositoryRoot string) (string, error) {
	repository, openError := openRepository(repositoryRoot)
	if openError != nil {
		return "", openError
	}
	headReference, headError := repository.Head()
	if headError != nil {
		return "", fmt.Errorf(resolveHeadErrorTemplate, headError)
	}
	if !headReference.Name().IsBranch() {
		return "HEAD", nil
	}
	return headReference.Name().Short(), nil
}

// RecentCommits returns up to count "<short hash> <subject>" lines, most recent first.
func (reader GoGitHistoryReader) RecentCommits(executionContext context.Context, repositoryRoot string, count int) ([]string, error) {
	repository, openError := openRepository(repositoryRoot)
	if openError != nil {
		return nil, openError
	}
	headReference, headError := repository.Head()
	if headError != nil {
		return nil, fmt.Errorf(resolveHeadErrorTemplate, headError)
	}

	commitIterator, logError := repository.Log(&git.LogOptions{From: headReference.Hash()})
	if logError != nil {
		return nil, fmt.Errorf(readHistoryErrorTemplate, logError)
	}
	defer commitIterator.Close()

	summaries := make([]string, 0, count)
	for len(summaries) < count {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		commit, nextError := commitIterator.Next()
		if errors.Is(nextError, io.EOF) {
			break
		}
		if nextError != nil {
			return nil, fmt.Errorf(readHistoryErrorTemplate, nextError)
		}
		summaries = append(summaries, summarizeCommit(commit))
	}
	return summaries, nil
}

func openRepository(repositoryRoot string) (*git.Repository, error) {
	repository, openError := git.PlainOpenWithOptions(repositoryRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(openRepositoryErrorTemplate, repositoryRoot, openError)
	}
	return repository, nil
}

func summarizeCommit(commit *object.Commit) string {
	subject := strings.TrimSpace(commit.Message)
	if newlineIndex := strings.Index(subject, "\n"); newlineIndex >= 0 {
		subject = strings.TrimSpace(subject[:newlineIndex])
	}
	return fmt.Sprintf(oneLineSummaryTemplate, commit.Hash.String()[:abbreviatedHashLengthConstant], subject)
}
