package commitformat

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const (
	formatMismatchMessageConstant  = "Message does not match required format: <emoji> <type>(<scope>) [TAG]: <message>"
	wrongEmojiTemplateConstant     = "Wrong emoji. Expected \"%s\" for type \"%s\", got \"%s\""
	invalidTypeTemplateConstant    = "Invalid type \"%s\". Must be one of: %s"
	scopeCaseTemplateConstant      = "Scope \"%s\" must be lowercase"
	invalidTagTemplateConstant     = "Invalid tag \"[%s]\". Must be one of: %s"
	messageTooLongTemplateConstant = "Message too long (%d chars). Maximum %d characters."
)

var headerPattern = regexp.MustCompile(`^(\S+)\s+(\w+)\(([^)]+)\)\s+\[([^\]]+)\]:\s+(.+)$`)

// HeaderParts holds the captured components of a header that matched the grammar.
type HeaderParts struct {
	Emoji        string
	Type         CommitType
	Scope        string
	Tag          Tag
	ShortMessage string
}

// ValidationResult reports whether a header conforms to the lexicon. Valid is true
// exactly when Errors is empty. Parts is nil when the header did not match the grammar.
type ValidationResult struct {
	Valid  bool
	Errors []string
	Parts  *HeaderParts
}

// ParseHeader matches a single line against the grammar. The emoji token must be
// exactly one grapheme cluster.
func ParseHeader(line string) (HeaderParts, bool) {
	matches := headerPattern.FindStringSubmatch(line)
	if matches == nil {
		return HeaderParts{}, false
	}
	if uniseg.GraphemeClusterCount(matches[1]) != 1 {
		return HeaderParts{}, false
	}
	return HeaderParts{
		Emoji:        matches[1],
		Type:         CommitType(matches[2]),
		Scope:        matches[3],
		Tag:          Tag(matches[4]),
		ShortMessage: matches[5],
	}, true
}

// ValidateFormat checks a single header line. A grammar mismatch yields exactly one
// error; otherwise every rule is checked and all violations are reported in order:
// emoji, type, scope case, tag, length.
func ValidateFormat(message string) ValidationResult {
	parts, matched := ParseHeader(message)
	if !matched {
		return ValidationResult{Valid: false, Errors: []string{formatMismatchMessageConstant}}
	}

	violations := make([]string, 0)
	if !IsValidType(parts.Type) {
		violations = append(violations, fmt.Sprintf(invalidTypeTemplateConstant, parts.Type, joinTypes()))
	} else if expectedEmoji, _ := EmojiFor(parts.Type); expectedEmoji != parts.Emoji {
		violations = append(violations, fmt.Sprintf(wrongEmojiTemplateConstant, expectedEmoji, parts.Type, parts.Emoji))
	}

	if parts.Scope != strings.ToLower(parts.Scope) {
		violations = append(violations, fmt.Sprintf(scopeCaseTemplateConstant, parts.Scope))
	}

	if !IsValidTag(parts.Tag) {
		violations = append(violations, fmt.Sprintf(invalidTagTemplateConstant, parts.Tag, joinTags()))
	}

	if length := utf8.RuneCountInString(parts.ShortMessage); length > MaxShortMessageLength {
		violations = append(violations, fmt.Sprintf(messageTooLongTemplateConstant, length, MaxShortMessageLength))
	}

	return ValidationResult{Valid: len(violations) == 0, Errors: violations, Parts: &parts}
}
