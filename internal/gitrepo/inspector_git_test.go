package gitrepo_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/aicommit/internal/commitformat"
	"github.com/tyemirov/aicommit/internal/execshell"
	"github.com/tyemirov/aicommit/internal/gitrepo"
)

const testRenamedSourceConstant = "export function login(user: string): boolean {\n\treturn user.length > 0\n}\n"

func TestInspectorReadsStagedIndex(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	repositoryRoot := testInstance.TempDir()
	repository, initError := git.PlainInit(repositoryRoot, false)
	require.NoError(testInstance, initError)
	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryRoot, "src"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryRoot, "src", "old.ts"), []byte(testRenamedSourceConstant), 0o600))
	_, sourceAddError := worktree.Add("src/old.ts")
	require.NoError(testInstance, sourceAddError)
	commitFile(testInstance, worktree, repositoryRoot, "README.md", "initial import", 0)

	_, moveError := worktree.Move("src/old.ts", "src/new.ts")
	require.NoError(testInstance, moveError)
	accentedPath := filepath.Join("src", "é.ts")
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryRoot, accentedPath), []byte("export const accent = 1\n"), 0o600))
	_, addError := worktree.Add(filepath.ToSlash(accentedPath))
	require.NoError(testInstance, addError)

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), false)
	require.NoError(testInstance, executorError)
	inspector, creationError := gitrepo.NewInspector(shellExecutor, nil, repositoryRoot)
	require.NoError(testInstance, creationError)

	files, filesError := inspector.StagedFiles(context.Background())
	require.NoError(testInstance, filesError)
	require.ElementsMatch(testInstance, []string{"src/new.ts", "src/é.ts"}, files)
	require.Equal(testInstance, "src", commitformat.ExtractScope(files))

	changes, statsError := inspector.StagedChangeStats(context.Background())
	require.NoError(testInstance, statsError)
	require.ElementsMatch(testInstance, []gitrepo.StagedChange{
		{Path: "src/new.ts", Status: gitrepo.StatusRenamed, Additions: 0, Deletions: 0},
		{Path: "src/é.ts", Status: gitrepo.StatusAdded, Additions: 1, Deletions: 0},
	}, changes)
	require.True(testInstance, inspector.HasStagedChanges(context.Background()))
}
