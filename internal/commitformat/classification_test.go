package commitformat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/aicommit/internal/commitformat"
)

func TestExtractScope(testInstance *testing.T) {
	testCases := []struct {
		name          string
		files         []string
		expectedScope string
	}{
		{name: "empty", files: nil, expectedScope: "general"},
		{name: "most_frequent", files: []string{"src/a.ts", "src/b.ts", "lib/c.ts"}, expectedScope: "src"},
		{name: "root_files", files: []string{"README.md", "go.mod"}, expectedScope: "root"},
		{name: "tie_goes_to_first", files: []string{"lib/a.go", "src/b.go"}, expectedScope: "lib"},
		{name: "lowercased", files: []string{"Web/App.tsx"}, expectedScope: "web"},
		{name: "root_outnumbers_directory", files: []string{"a.go", "b.go", "cmd/main.go"}, expectedScope: "root"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedScope, commitformat.ExtractScope(testCase.files))
		})
	}
}

func TestDetermineTag(testInstance *testing.T) {
	testCases := []struct {
		name        string
		files       []string
		expectedTag commitformat.Tag
	}{
		{name: "frontend_beats_docs", files: []string{"x.md", "y.ts"}, expectedTag: commitformat.TagFrontend},
		{name: "backend", files: []string{"internal/server.go"}, expectedTag: commitformat.TagBackend},
		{name: "backend_beats_database", files: []string{"schema.sql", "app.py"}, expectedTag: commitformat.TagBackend},
		{name: "database", files: []string{"migrations/001.sql"}, expectedTag: commitformat.TagDatabase},
		{name: "documentation", files: []string{"docs/guide.md"}, expectedTag: commitformat.TagDocumentation},
		{name: "ci_yaml", files: []string{".github/workflows/ci.yml"}, expectedTag: commitformat.TagCI},
		{name: "dockerfile_without_extension", files: []string{"deploy/Dockerfile"}, expectedTag: commitformat.TagCI},
		{name: "uppercase_extension", files: []string{"README.MD"}, expectedTag: commitformat.TagDocumentation},
		{name: "test_path", files: []string{"test/fixtures/data.bin"}, expectedTag: commitformat.TagTest},
		{name: "spec_path", files: []string{"ui/spec/snapshot.png"}, expectedTag: commitformat.TagTest},
		{name: "path_marker_is_case_sensitive", files: []string{"Spec/TestData.png"}, expectedTag: commitformat.TagFrontend},
		{name: "default", files: []string{"assets/logo.png"}, expectedTag: commitformat.TagFrontend},
		{name: "empty", files: nil, expectedTag: commitformat.TagFrontend},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedTag, commitformat.DetermineTag(testCase.files))
		})
	}
}
