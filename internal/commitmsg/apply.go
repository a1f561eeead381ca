package commitmsg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

const (
	commitMessageFilePermissions        = 0o644
	commitMessagePathMissingMessage     = "commit message path resolver is not configured"
	commitMessageWriteErrorTemplate     = "unable to write commit message file %s: %w"
	clipboardUnavailableMessageConstant = "clipboard is not available on this system"
	clipboardWriteErrorTemplateConstant = "unable to copy commit message to clipboard: %w"
)

var (
	// ErrCommitMessagePathMissing indicates the file applier cannot resolve its target.
	ErrCommitMessagePathMissing = errors.New(commitMessagePathMissingMessage)
	// ErrClipboardUnavailable indicates the system has no clipboard utility.
	ErrClipboardUnavailable = errors.New(clipboardUnavailableMessageConstant)
)

// CommitMessagePathResolver locates the file read by `git commit -F`.
type CommitMessagePathResolver interface {
	CommitMessagePath(executionContext context.Context) (string, error)
}

// CommitMessageFileApplier writes the message into the repository's git directory so
// `git commit -e -F <path>` picks it up.
type CommitMessageFileApplier struct {
	Paths CommitMessagePathResolver
}

// Apply writes the message followed by a newline and returns the file path.
func (applier CommitMessageFileApplier) Apply(executionContext context.Context, message string) (string, error) {
	if applier.Paths == nil {
		return "", ErrCommitMessagePathMissing
	}
	messagePath, pathError := applier.Paths.CommitMessagePath(executionContext)
	if pathError != nil {
		return "", pathError
	}
	if mkdirError := os.MkdirAll(filepath.Dir(messagePath), 0o755); mkdirError != nil {
		return "", fmt.Errorf(commitMessageWriteErrorTemplate, messagePath, mkdirError)
	}
	contents := strings.TrimRight(message, "\n") + "\n"
	if writeError := os.WriteFile(messagePath, []byte(contents), commitMessageFilePermissions); writeError != nil {
		return "", fmt.Errorf(commitMessageWriteErrorTemplate, messagePath, writeError)
	}
	return messagePath, nil
}

// ClipboardWriter abstracts the system clipboard.
type ClipboardWriter interface {
	Unsupported() bool
	WriteAll(text string) error
}

// SystemClipboard writes through atotto/clipboard.
type SystemClipboard struct{}

// Unsupported reports whether no clipboard utility was found.
func (SystemClipboard) Unsupported() bool {
	return clipboard.Unsupported
}

// WriteAll replaces the clipboard contents.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// ClipboardPresenter copies messages that are not applied automatically. A nil Clipboard
// writes to the system clipboard.
type ClipboardPresenter struct {
	Clipboard ClipboardWriter
}

// Present copies the message to the clipboard.
func (presenter ClipboardPresenter) Present(message string) error {
	writer := presenter.Clipboard
	if writer == nil {
		writer = SystemClipboard{}
	}
	if writer.Unsupported() {
		return ErrClipboardUnavailable
	}
	if writeError := writer.WriteAll(message); writeError != nil {
		return fmt.Errorf(clipboardWriteErrorTemplateConstant, writeError)
	}
	return nil
}
