package commitformat

import (
	"fmt"
	"strings"
)

const (
	promptHeaderConstant       = "Generate a commit message using this STRICT format:\n\n<emoji> <type>(<scope>) [TAG]: <short message>\n\nRULES:\n"
	promptEmojiRuleConstant    = "- <emoji>: Use the exact emoji from this mapping:\n"
	promptEmojiLineTemplate    = "  %s for %s (%s)\n"
	promptTypeRuleTemplate     = "- <type>: MUST be one of: %s\n"
	promptScopeRuleConstant    = "- (<scope>): REQUIRED lowercase module or component name (e.g. auth, payment, user)\n"
	promptTagRuleTemplate      = "- [TAG]: MUST be one of: %s\n"
	promptMessageRuleTemplate  = "- <short message>: Brief, imperative, max %d characters, English only\n\n"
	promptExamplesHeader       = "Examples:\n"
	promptExampleLineTemplate  = "- %s\n"
	promptImportantConstant    = "IMPORTANT: Return ONLY the single-line commit message. No explanations or additional text.\n"
	promptAdditionalTemplate   = "\nAdditional instructions: %s\n"
	promptDiffTemplate         = "\nGit diff to analyze:\n%s"
	typeListSeparatorConstant  = ", "
	tagListSeparatorConstant   = ", "
	tagDisplayTemplateConstant = "[%s]"
)

type headerExample struct {
	commitType CommitType
	scope      string
	tag        Tag
	text       string
}

var promptExamples = []headerExample{
	{commitType: TypeFeat, scope: "auth", tag: TagFrontend, text: "add Google OAuth login"},
	{commitType: TypeFix, scope: "user", tag: TagAPI, text: "fix null response from endpoint"},
	{commitType: TypeRefactor, scope: "payment", tag: TagBackend, text: "clean up retry logic"},
	{commitType: TypeTest, scope: "button", tag: TagTest, text: "add unit test for submit handler"},
}

// CreatePrompt builds the instruction sent to a backend. Any non-empty customSuffix is
// emitted verbatim as the additional instructions section.
func CreatePrompt(diff string, customSuffix string) string {
	var builder strings.Builder
	builder.WriteString(promptHeaderConstant)
	builder.WriteString(promptEmojiRuleConstant)
	for _, definition := range typeDefinitions {
		builder.WriteString(fmt.Sprintf(promptEmojiLineTemplate, definition.emoji, definition.commitType, definition.description))
	}
	builder.WriteString(fmt.Sprintf(promptTypeRuleTemplate, joinTypes()))
	builder.WriteString(promptScopeRuleConstant)
	builder.WriteString(fmt.Sprintf(promptTagRuleTemplate, joinTags()))
	builder.WriteString(fmt.Sprintf(promptMessageRuleTemplate, MaxShortMessageLength))
	builder.WriteString(promptExamplesHeader)
	for _, example := range promptExamples {
		builder.WriteString(fmt.Sprintf(promptExampleLineTemplate, Compose(example.commitType, example.scope, example.tag, example.text)))
	}
	builder.WriteString("\n")
	builder.WriteString(promptImportantConstant)
	if len(customSuffix) > 0 {
		builder.WriteString(fmt.Sprintf(promptAdditionalTemplate, customSuffix))
	}
	builder.WriteString(fmt.Sprintf(promptDiffTemplate, diff))
	return builder.String()
}

func joinTypes() string {
	names := make([]string, 0, len(typeDefinitions))
	for _, definition := range typeDefinitions {
		names = append(names, string(definition.commitType))
	}
	return strings.Join(names, typeListSeparatorConstant)
}

func joinTags() string {
	names := make([]string, 0, len(validTags))
	for _, tag := range validTags {
		names = append(names, fmt.Sprintf(tagDisplayTemplateConstant, tag))
	}
	return strings.Join(names, tagListSeparatorConstant)
}
