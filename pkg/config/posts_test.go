package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/presspatch/pkg/edit"
)

func TestLoadPosts(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []PostSpec
		wantErr string
	}{
		{
			name: "json_list",
			file: "posts.json",
			content: `[
  {"title": "First", "content": "Hello", "status": "draft"},
  {"title": "Second", "content": "World", "type": "page"}
]`,
			want: []PostSpec{
				{Title: "First", Content: "Hello", Status: "draft"},
				{Title: "Second", Content: "World", Type: "page"},
			},
		},
		{
			name: "yaml_list",
			file: "posts.yaml",
			content: `
- title: First
  content: Hello
- title: Second
  content: World
`,
			want: []PostSpec{
				{Title: "First", Content: "Hello"},
				{Title: "Second", Content: "World"},
			},
		},
		{
			name:    "csv_with_header",
			file:    "posts.csv",
			content: "title,content,status\nFirst,Hello,publish\nSecond,World,draft\n",
			want: []PostSpec{
				{Title: "First", Content: "Hello", Status: "publish"},
				{Title: "Second", Content: "World", Status: "draft"},
			},
		},
		{
			name:    "empty_list",
			file:    "posts.json",
			content: "[]",
			wantErr: "no posts found",
		},
		{
			name:    "unsupported_extension",
			file:    "posts.txt",
			content: "whatever",
			wantErr: "unsupported post file extension",
		},
		{
			name:    "csv_without_rows",
			file:    "posts.csv",
			content: "title,content\n",
			wantErr: "header row and at least one post",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			got, err := LoadPosts(context.Background(), path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEditSpec_Locator(t *testing.T) {
	tests := []struct {
		name    string
		spec    EditSpec
		want    edit.Locator
		wantErr bool
	}{
		{
			name: "defaults_to_all",
			spec: EditSpec{Pattern: "a"},
			want: edit.All(),
		},
		{
			name: "line",
			spec: EditSpec{Pattern: "a", Line: 4},
			want: edit.AtLine(4),
		},
		{
			name: "nth",
			spec: EditSpec{Pattern: "a", Nth: 2},
			want: edit.NthOccurrence(2),
		},
		{
			name: "range",
			spec: EditSpec{Pattern: "a", StartLine: 2, EndLine: 5},
			want: edit.LineRange(2, 5),
		},
		{
			name:    "line_and_nth_conflict",
			spec:    EditSpec{Pattern: "a", Line: 1, Nth: 2},
			wantErr: true,
		},
		{
			name:    "line_and_range_conflict",
			spec:    EditSpec{Pattern: "a", Line: 1, StartLine: 2, EndLine: 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.spec.Locator()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEditSpec_MatchesSlug(t *testing.T) {
	spec := EditSpec{Pattern: "a", SlugGlob: "news-*"}
	assert.True(t, spec.MatchesSlug("news-2026-01"))
	assert.False(t, spec.MatchesSlug("blog-2026-01"))

	// Explicit targets disable glob selection.
	withTargets := EditSpec{Pattern: "a", SlugGlob: "news-*", Targets: []string{"7"}}
	assert.False(t, withTargets.MatchesSlug("news-2026-01"))

	noGlob := EditSpec{Pattern: "a"}
	assert.False(t, noGlob.MatchesSlug("anything"))
}

func TestLoadEditSpecs(t *testing.T) {
	path := writeFile(t, "edits.yaml", `
- pattern: old
  replacement: new
  nth: 2
  targets: ["12", "13"]
- pattern: typo
  replacement: fixed
  slug_glob: "news-*"
`)

	specs, err := LoadEditSpecs(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	req, err := specs[0].Request()
	require.NoError(t, err)
	assert.Equal(t, edit.NthOccurrence(2), req.Locator)
	assert.Equal(t, "old", req.Pattern)

	// Missing pattern and missing target selection are both rejected.
	bad := writeFile(t, "bad.yaml", "- replacement: x\n  targets: [\"1\"]\n")
	_, err = LoadEditSpecs(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern is required")

	noTargets := writeFile(t, "none.yaml", "- pattern: a\n  replacement: b\n")
	_, err = LoadEditSpecs(context.Background(), noTargets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets or slug_glob is required")
}
