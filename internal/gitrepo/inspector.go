package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tyemirov/aicommit/internal/execshell"
)

const (
	gitDiffSubcommandConstant                 = "diff"
	gitStagedFlagConstant                     = "--staged"
	gitNameOnlyFlagConstant                   = "--name-only"
	gitNumstatFlagConstant                    = "--numstat"
	gitNameStatusFlagConstant                 = "--name-status"
	gitFindRenamesFlagConstant                = "--find-renames"
	gitNulTerminatedFlagConstant              = "-z"
	gitRevParseSubcommandConstant             = "rev-parse"
	gitDirFlagConstant                        = "--git-dir"
	gitPathFlagConstant                       = "--git-path"
	commitMessageFileNameConstant             = "AI_COMMIT_EDITMSG"
	binaryCountMarkerConstant                 = "-"
	numstatFieldCountConstant                 = 3
	nulSeparatorConstant                      = "\x00"
	executorNotConfiguredMessageConstant      = "git executor not configured"
	repositoryRootMissingMessageConstant      = "repository root not provided"
	noStagedChangesMessageConstant            = "no staged changes found"
	repositoryOperationErrorTemplateConstant  = "%s operation failed"
	repositoryOperationErrorWithCauseConstant = "%s operation failed: %s"
	stagedDiffOperationNameConstant           = RepositoryOperationName("StagedDiff")
	stagedFilesOperationNameConstant          = RepositoryOperationName("StagedFiles")
	stagedStatsOperationNameConstant          = RepositoryOperationName("StagedChangeStats")
	commitMessagePathOperationNameConstant    = RepositoryOperationName("CommitMessagePath")
	defaultBranchNameConstant                 = "main"
)

// GitCommandExecutor exposes the subset of execshell functionality required by Inspector.
type GitCommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ChangeStatus is the single-letter index status of a staged path.
type ChangeStatus string

// Index statuses reported for staged paths.
const (
	StatusAdded    ChangeStatus = "A"
	StatusModified ChangeStatus = "M"
	StatusDeleted  ChangeStatus = "D"
	StatusRenamed  ChangeStatus = "R"
	StatusCopied   ChangeStatus = "C"
)

// StagedChange summarizes one staged path.
type StagedChange struct {
	Path      string       `yaml:"path"`
	Status    ChangeStatus `yaml:"status"`
	Additions int          `yaml:"additions"`
	Deletions int          `yaml:"deletions"`
}

var (
	// ErrGitExecutorNotConfigured indicates the Inspector was constructed without a git executor.
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrRepositoryRootMissing indicates the Inspector was constructed without a working-copy root.
	ErrRepositoryRootMissing = errors.New(repositoryRootMissingMessageConstant)
	// ErrNoStagedChanges indicates the index holds no staged changes.
	ErrNoStagedChanges = errors.New(noStagedChangesMessageConstant)
)

// RepositoryOperationName captures descriptive names for repository operations.
type RepositoryOperationName string

// RepositoryOperationError wraps execution failures for git operations.
type RepositoryOperationError struct {
	Operation RepositoryOperationName
	Cause     error
}

// Error describes the repository operation failure.
func (operationError RepositoryOperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(repositoryOperationErrorTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(repositoryOperationErrorWithCauseConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying error.
func (operationError RepositoryOperationError) Unwrap() error {
	return operationError.Cause
}

// Inspector answers read-only questions about the staged state of one working copy.
type Inspector struct {
	executor       GitCommandExecutor
	history        HistoryReader
	repositoryRoot string
}

// NewInspector constructs an Inspector. A nil history reader defaults to GoGitHistoryReader.
func NewInspector(executor GitCommandExecutor, history HistoryReader, repositoryRoot string) (*Inspector, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRoot := strings.TrimSpace(repositoryRoot)
	if len(trimmedRoot) == 0 {
		return nil, ErrRepositoryRootMissing
	}
	if history == nil {
		history = NewGoGitHistoryReader()
	}
	return &Inspector{executor: executor, history: history, repositoryRoot: trimmedRoot}, nil
}

// RepositoryRoot reports the working-copy root the inspector queries.
func (inspector *Inspector) RepositoryRoot() string {
	return inspector.repositoryRoot
}

// IsRepository reports whether the root lies inside a git working copy.
func (inspector *Inspector) IsRepository(executionContext context.Context) bool {
	_, executionError := inspector.runGit(executionContext, gitRevParseSubcommandConstant, gitDirFlagConstant)
	return executionError == nil
}

// HasStagedChanges reports whether at least one path is staged. Failures read as false.
func (inspector *Inspector) HasStagedChanges(executionContext context.Context) bool {
	output, executionError := inspector.runGit(executionContext, gitDiffSubcommandConstant, gitStagedFlagConstant, gitNameOnlyFlagConstant, gitNulTerminatedFlagConstant)
	if executionError != nil {
		return false
	}
	return len(nulSeparatedFields(output)) > 0
}

// StagedDiff returns the unified diff of the index against HEAD.
func (inspector *Inspector) StagedDiff(executionContext context.Context) (string, error) {
	output, executionError := inspector.runGit(executionContext, gitDiffSubcommandConstant, gitStagedFlagConstant)
	if executionError != nil {
		return "", RepositoryOperationError{Operation: stagedDiffOperationNameConstant, Cause: executionError}
	}
	if len(strings.TrimSpace(output)) == 0 {
		return "", ErrNoStagedChanges
	}
	return output, nil
}

// StagedFiles lists staged paths relative to the repository root in the order git reports them.
// Paths are read NUL-terminated, so they arrive unquoted and byte-exact.
func (inspector *Inspector) StagedFiles(executionContext context.Context) ([]string, error) {
	output, executionError := inspector.runGit(executionContext, gitDiffSubcommandConstant, gitStagedFlagConstant, gitNameOnlyFlagConstant, gitNulTerminatedFlagConstant)
	if executionError != nil {
		return nil, RepositoryOperationError{Operation: stagedFilesOperationNameConstant, Cause: executionError}
	}
	return nulSeparatedFields(output), nil
}

// StagedChangeStats reports per-path line counts and index status. Binary files count zero
// lines; renamed and copied paths are reported under their destination. A path whose status
// cannot be read reads as StatusModified.
func (inspector *Inspector) StagedChangeStats(executionContext context.Context) ([]StagedChange, error) {
	output, executionError := inspector.runGit(executionContext, gitDiffSubcommandConstant, gitStagedFlagConstant, gitFindRenamesFlagConstant, gitNumstatFlagConstant, gitNulTerminatedFlagConstant)
	if executionError != nil {
		return nil, RepositoryOperationError{Operation: stagedStatsOperationNameConstant, Cause: executionError}
	}

	statuses := inspector.stagedStatuses(executionContext)
	changes := parseNumstat(output)
	for index := range changes {
		if status, found := statuses[changes[index].Path]; found {
			changes[index].Status = status
		}
	}
	return changes, nil
}

// CurrentBranch returns the checked-out branch name, or "main" when it cannot be determined.
func (inspector *Inspector) CurrentBranch(executionContext context.Context) string {
	branchName, branchError := inspector.history.CurrentBranch(executionContext, inspector.repositoryRoot)
	if branchError != nil || len(strings.TrimSpace(branchName)) == 0 {
		return defaultBranchNameConstant
	}
	return branchName
}

// RecentCommits returns up to count one-line summaries, most recent first. Failures yield an empty list.
func (inspector *Inspector) RecentCommits(executionContext context.Context, count int) []string {
	if count <= 0 {
		return []string{}
	}
	commits, historyError := inspector.history.RecentCommits(executionContext, inspector.repositoryRoot, count)
	if historyError != nil || commits == nil {
		return []string{}
	}
	return commits
}

// CommitMessagePath resolves the absolute path of the AI_COMMIT_EDITMSG file inside the git directory.
func (inspector *Inspector) CommitMessagePath(executionContext context.Context) (string, error) {
	output, executionError := inspector.runGit(executionContext, gitRevParseSubcommandConstant, gitPathFlagConstant, commitMessageFileNameConstant)
	if executionError != nil {
		return "", RepositoryOperationError{Operation: commitMessagePathOperationNameConstant, Cause: executionError}
	}
	resolvedPath := strings.TrimSpace(output)
	if !filepath.IsAbs(resolvedPath) {
		resolvedPath = filepath.Join(inspector.repositoryRoot, resolvedPath)
	}
	return resolvedPath, nil
}

// stagedStatuses maps destination paths to their index status. A failed query yields an
// empty map.
func (inspector *Inspector) stagedStatuses(executionContext context.Context) map[string]ChangeStatus {
	output, executionError := inspector.runGit(executionContext, gitDiffSubcommandConstant, gitStagedFlagConstant, gitFindRenamesFlagConstant, gitNameStatusFlagConstant, gitNulTerminatedFlagConstant)
	if executionError != nil {
		return map[string]ChangeStatus{}
	}
	return parseNameStatus(output)
}

func (inspector *Inspector) runGit(executionContext context.Context, arguments ...string) (string, error) {
	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: inspector.repositoryRoot,
	})
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

func nulSeparatedFields(output string) []string {
	rawFields := strings.Split(output, nulSeparatorConstant)
	fields := make([]string, 0, len(rawFields))
	for _, rawField := range rawFields {
		if len(rawField) == 0 {
			continue
		}
		fields = append(fields, rawField)
	}
	return fields
}

// parseNumstat reads "--numstat -z" records. A rename or copy leaves the path column empty
// and is followed by the source and destination paths as separate fields.
func parseNumstat(output string) []StagedChange {
	fields := strings.Split(output, nulSeparatorConstant)
	changes := make([]StagedChange, 0, len(fields))
	for index := 0; index < len(fields); index++ {
		columns := strings.SplitN(fields[index], "\t", numstatFieldCountConstant)
		if len(columns) != numstatFieldCountConstant {
			continue
		}
		filePath := columns[2]
		if len(filePath) == 0 {
			if index+2 >= len(fields) {
				break
			}
			filePath = fields[index+2]
			index += 2
		}
		changes = append(changes, StagedChange{
			Path:      filePath,
			Status:    StatusModified,
			Additions: parseLineCount(columns[0]),
			Deletions: parseLineCount(columns[1]),
		})
	}
	return changes
}

// parseNameStatus reads "--name-status -z" records: a status token (R and C carry a
// similarity score) followed by one path, or by source and destination for R and C.
func parseNameStatus(output string) map[string]ChangeStatus {
	fields := strings.Split(output, nulSeparatorConstant)
	statuses := make(map[string]ChangeStatus, len(fields)/2)
	for index := 0; index < len(fields); index++ {
		token := fields[index]
		if len(token) == 0 {
			continue
		}
		status := classifyStatus(token[:1])
		pathOffset := 1
		if status == StatusRenamed || status == StatusCopied {
			pathOffset = 2
		}
		if index+pathOffset >= len(fields) {
			break
		}
		statuses[fields[index+pathOffset]] = status
		index += pathOffset
	}
	return statuses
}

func classifyStatus(letter string) ChangeStatus {
	switch ChangeStatus(letter) {
	case StatusAdded, StatusDeleted, StatusRenamed, StatusCopied:
		return ChangeStatus(letter)
	default:
		return StatusModified
	}
}

func parseLineCount(field string) int {
	if field == binaryCountMarkerConstant {
		return 0
	}
	count, parseError := strconv.Atoi(strings.TrimSpace(field))
	if parseError != nil || count < 0 {
		return 0
	}
	return count
}
