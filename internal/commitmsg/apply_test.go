package commitmsg_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/aicommit/internal/commitmsg"
)

type staticPathResolver struct {
	path string
	err  error
}

func (resolver staticPathResolver) CommitMessagePath(context.Context) (string, error) {
	return resolver.path, resolver.err
}

func TestCommitMessageFileApplier(testInstance *testing.T) {
	resolveFailure := errors.New("rev-parse failed")
	testCases := []struct {
		name             string
		resolver         commitmsg.CommitMessagePathResolver
		message          string
		expectedContents string
		expectedTarget   error
	}{
		{
			name:             "writes_message_with_newline",
			message:          testValidMessageConstant,
			expectedContents: testValidMessageConstant + "\n",
		},
		{
			name:             "does_not_double_newline",
			message:          testValidMessageConstant + "\n",
			expectedContents: testValidMessageConstant + "\n",
		},
		{
			name:           "resolver_failure",
			resolver:       staticPathResolver{err: resolveFailure},
			message:        testValidMessageConstant,
			expectedTarget: resolveFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			messagePath := filepath.Join(testInstance.TempDir(), ".git", "AI_COMMIT_EDITMSG")
			resolver := testCase.resolver
			if resolver == nil {
				resolver = staticPathResolver{path: messagePath}
			}
			applier := commitmsg.CommitMessageFileApplier{Paths: resolver}

			target, applyError := applier.Apply(context.Background(), testCase.message)
			if testCase.expectedTarget != nil {
				require.ErrorIs(testInstance, applyError, testCase.expectedTarget)
				return
			}
			require.NoError(testInstance, applyError)
			require.Equal(testInstance, messagePath, target)
			contents, readError := os.ReadFile(messagePath)
			require.NoError(testInstance, readError)
			require.Equal(testInstance, testCase.expectedContents, string(contents))
		})
	}
}

func TestCommitMessageFileApplierRequiresResolver(testInstance *testing.T) {
	_, applyError := commitmsg.CommitMessageFileApplier{}.Apply(context.Background(), testValidMessageConstant)
	require.ErrorIs(testInstance, applyError, commitmsg.ErrCommitMessagePathMissing)
}

type fakeClipboard struct {
	unsupported bool
	err         error
	contents    string
}

func (clipboard *fakeClipboard) Unsupported() bool { return clipboard.unsupported }

func (clipboard *fakeClipboard) WriteAll(text string) error {
	if clipboard.err != nil {
		return clipboard.err
	}
	clipboard.contents = text
	return nil
}

func TestClipboardPresenter(testInstance *testing.T) {
	writeFailure := errors.New("xclip exited")
	testCases := []struct {
		name             string
		clipboard        *fakeClipboard
		expectedTarget   error
		expectedContents string
	}{
		{name: "copies", clipboard: &fakeClipboard{}, expectedContents: testValidMessageConstant},
		{name: "unsupported", clipboard: &fakeClipboard{unsupported: true}, expectedTarget: commitmsg.ErrClipboardUnavailable},
		{name: "write_failure", clipboard: &fakeClipboard{err: writeFailure}, expectedTarget: writeFailure},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			presenter := commitmsg.ClipboardPresenter{Clipboard: testCase.clipboard}
			presentError := presenter.Present(testValidMessageConstant)
			if testCase.expectedTarget != nil {
				require.ErrorIs(testInstance, presentError, testCase.expectedTarget)
				return
			}
			require.NoError(testInstance, presentError)
			require.Equal(testInstance, testCase.expectedContents, testCase.clipboard.contents)
		})
	}
}
