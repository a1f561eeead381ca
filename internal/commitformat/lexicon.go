// Package commitformat holds the commit message lexicon, the generation prompt and the
// validator for the emoji-tagged header grammar
//
//	<emoji> <type>(<scope>) [<TAG>]: <short message>
package commitformat

import "fmt"

// CommitType is the conventional change category of a commit header.
type CommitType string

// Supported commit types.
const (
	TypeFeat     CommitType = "feat"
	TypeFix      CommitType = "fix"
	TypeRefactor CommitType = "refactor"
	TypeBuild    CommitType = "build"
	TypePerf     CommitType = "perf"
	TypeDocs     CommitType = "docs"
	TypeTest     CommitType = "test"
	TypeStyle    CommitType = "style"
	TypeChore    CommitType = "chore"
	TypeDeps     CommitType = "deps"
)

// Tag labels the area of the code base a commit touches.
type Tag string

// Supported tags.
const (
	TagFrontend      Tag = "FE"
	TagBackend       Tag = "BE"
	TagAPI           Tag = "API"
	TagDatabase      Tag = "DB"
	TagDocumentation Tag = "DOCS"
	TagCI            Tag = "CI"
	TagTest          Tag = "TEST"
)

// MaxShortMessageLength bounds the text after the colon, in characters.
const MaxShortMessageLength = 60

const composeTemplateConstant = "%s %s(%s) [%s]: %s"

type typeDefinition struct {
	commitType  CommitType
	emoji       string
	description string
}

// typeDefinitions is ordered; the prompt and error messages list types in this order.
var typeDefinitions = []typeDefinition{
	{commitType: TypeFeat, emoji: "✨", description: "new features"},
	{commitType: TypeFix, emoji: "🐛", description: "bug fixes"},
	{commitType: TypeRefactor, emoji: "♻️", description: "code cleanup"},
	{commitType: TypeBuild, emoji: "📦", description: "build system"},
	{commitType: TypePerf, emoji: "🚀", description: "performance improvements"},
	{commitType: TypeDocs, emoji: "📝", description: "documentation"},
	{commitType: TypeTest, emoji: "✅", description: "tests"},
	{commitType: TypeStyle, emoji: "💄", description: "code formatting"},
	{commitType: TypeChore, emoji: "🔥", description: "removals"},
	{commitType: TypeDeps, emoji: "⬆️", description: "dependency updates"},
}

var validTags = []Tag{TagFrontend, TagBackend, TagAPI, TagDatabase, TagDocumentation, TagCI, TagTest}

var emojiByType = buildEmojiByType()

func buildEmojiByType() map[CommitType]string {
	mapping := make(map[CommitType]string, len(typeDefinitions))
	for _, definition := range typeDefinitions {
		mapping[definition.commitType] = definition.emoji
	}
	return mapping
}

// FormatRules describes the fixed lexicon.
type FormatRules struct {
	EmojiMap   map[CommitType]string
	ValidTypes []CommitType
	ValidTags  []Tag
	MaxLength  int
}

// Rules returns a copy of the lexicon that callers may modify freely.
func Rules() FormatRules {
	emojiMap := make(map[CommitType]string, len(emojiByType))
	for commitType, emoji := range emojiByType {
		emojiMap[commitType] = emoji
	}
	return FormatRules{
		EmojiMap:   emojiMap,
		ValidTypes: ValidTypes(),
		ValidTags:  ValidTags(),
		MaxLength:  MaxShortMessageLength,
	}
}

// ValidTypes lists the supported commit types in lexicon order.
func ValidTypes() []CommitType {
	types := make([]CommitType, 0, len(typeDefinitions))
	for _, definition := range typeDefinitions {
		types = append(types, definition.commitType)
	}
	return types
}

// ValidTags lists the supported tags in lexicon order.
func ValidTags() []Tag {
	return append([]Tag(nil), validTags...)
}

// EmojiFor returns the emoji mapped to the commit type.
func EmojiFor(commitType CommitType) (string, bool) {
	emoji, found := emojiByType[commitType]
	return emoji, found
}

// IsValidType reports whether the commit type belongs to the lexicon.
func IsValidType(commitType CommitType) bool {
	_, found := emojiByType[commitType]
	return found
}

// IsValidTag reports whether the tag belongs to the lexicon.
func IsValidTag(tag Tag) bool {
	for _, candidate := range validTags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// Compose renders a header line for the given parts using the mapped emoji.
func Compose(commitType CommitType, scope string, tag Tag, text string) string {
	emoji, _ := EmojiFor(commitType)
	return fmt.Sprintf(composeTemplateConstant, emoji, commitType, scope, tag, text)
}
