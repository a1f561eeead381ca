package commitformat

import (
	"path"
	"strings"
)

const (
	defaultScopeConstant   = "general"
	rootScopeConstant      = "root"
	pathSeparatorConstant  = "/"
	testPathMarkerConstant = "test"
	specPathMarkerConstant = "spec"
)

type tagExtensionRule struct {
	tag        Tag
	extensions []string
}

// tagExtensionRules is evaluated in order; the first rule owning a file extension wins.
var tagExtensionRules = []tagExtensionRule{
	{tag: TagFrontend, extensions: []string{"ts", "js", "tsx", "jsx", "vue", "svelte"}},
	{tag: TagBackend, extensions: []string{"py", "java", "go", "rb", "php", "cs"}},
	{tag: TagDatabase, extensions: []string{"sql", "db", "migration"}},
	{tag: TagDocumentation, extensions: []string{"md", "txt", "doc"}},
	{tag: TagCI, extensions: []string{"yml", "yaml", "json", "dockerfile"}},
}

// ExtractScope returns the most frequent first path segment among the files. Files at
// the repository root count as "root". Ties go to the segment seen first. An empty
// list yields "general".
func ExtractScope(files []string) string {
	if len(files) == 0 {
		return defaultScopeConstant
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, file := range files {
		segment := firstSegment(file)
		if _, seen := counts[segment]; !seen {
			order = append(order, segment)
		}
		counts[segment]++
	}

	bestSegment := order[0]
	for _, segment := range order[1:] {
		if counts[segment] > counts[bestSegment] {
			bestSegment = segment
		}
	}
	return strings.ToLower(bestSegment)
}

func firstSegment(file string) string {
	segments := strings.Split(strings.TrimLeft(file, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) < 2 || len(segments[0]) == 0 {
		return rootScopeConstant
	}
	return segments[0]
}

// DetermineTag picks a tag for the staged files. Extension rules are checked in
// FE, BE, DB, DOCS, CI order against any file; then a path containing "test" or "spec"
// (case-sensitive) yields TEST; otherwise FE.
func DetermineTag(files []string) Tag {
	extensions := make(map[string]struct{}, len(files))
	for _, file := range files {
		extensions[extensionOf(file)] = struct{}{}
	}

	for _, rule := range tagExtensionRules {
		for _, extension := range rule.extensions {
			if _, present := extensions[extension]; present {
				return rule.tag
			}
		}
	}

	for _, file := range files {
		if strings.Contains(file, testPathMarkerConstant) || strings.Contains(file, specPathMarkerConstant) {
			return TagTest
		}
	}
	return TagFrontend
}

// extensionOf returns the lowercased text after the last dot of the base name, or the
// whole base name when it has no dot, so that "Dockerfile" maps to "dockerfile".
func extensionOf(file string) string {
	base := strings.ToLower(path.Base(file))
	if dotIndex := strings.LastIndex(base, "."); dotIndex >= 0 {
		return base[dotIndex+1:]
	}
	return base
}
