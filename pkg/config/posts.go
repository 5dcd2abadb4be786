package config

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/presspatch/pkg/edit"
)

// 📝 PostSpec describes one document to create in a bulk-create run.
type PostSpec struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Status  string `json:"status,omitempty" yaml:"status,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
}

// LoadPosts parses a bulk-create input file. JSON and YAML files hold a
// list of post specs; CSV files hold one spec per row with a header row
// naming the columns (title, content, status, type).
func LoadPosts(ctx context.Context, path string) ([]PostSpec, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading bulk post file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading post file: %w", err)
	}

	var posts []PostSpec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &posts); err != nil {
			return nil, errors.Errorf("parsing JSON post file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &posts); err != nil {
			return nil, errors.Errorf("parsing YAML post file: %w", err)
		}
	case ".csv":
		posts, err = parseCSVPosts(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unsupported post file extension %q", ext)
	}

	if len(posts) == 0 {
		return nil, errors.Errorf("no posts found in %s", path)
	}
	return posts, nil
}

func parseCSVPosts(data []byte) ([]PostSpec, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, errors.Errorf("parsing CSV post file: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("CSV post file needs a header row and at least one post")
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	posts := make([]PostSpec, 0, len(records)-1)
	for _, row := range records[1:] {
		posts = append(posts, PostSpec{
			Title:   field(row, "title"),
			Content: field(row, "content"),
			Status:  field(row, "status"),
			Type:    field(row, "type"),
		})
	}
	return posts, nil
}

// ✂️ EditSpec describes one bulk edit: a pattern, its replacement, an
// optional positional locator, and the documents it applies to, either
// as explicit ids or as a glob over document slugs.
type EditSpec struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Line        int    `json:"line,omitempty" yaml:"line,omitempty"`
	Nth         int    `json:"nth,omitempty" yaml:"nth,omitempty"`
	StartLine   int    `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	EndLine     int    `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	Preview     bool   `json:"preview,omitempty" yaml:"preview,omitempty"`

	Targets  []string `json:"targets,omitempty" yaml:"targets,omitempty"`
	SlugGlob string   `json:"slug_glob,omitempty" yaml:"slug_glob,omitempty"`
}

// Locator derives the edit locator from the positional fields. At most
// one of line / nth / start+end may be set; none of them means "all".
func (s EditSpec) Locator() (edit.Locator, error) {
	set := 0
	if s.Line != 0 {
		set++
	}
	if s.Nth != 0 {
		set++
	}
	if s.StartLine != 0 || s.EndLine != 0 {
		set++
	}
	if set > 1 {
		return edit.Locator{}, errors.New("line, nth and start_line/end_line are mutually exclusive")
	}
	switch {
	case s.Line != 0:
		return edit.AtLine(s.Line), nil
	case s.Nth != 0:
		return edit.NthOccurrence(s.Nth), nil
	case s.StartLine != 0 || s.EndLine != 0:
		return edit.LineRange(s.StartLine, s.EndLine), nil
	default:
		return edit.All(), nil
	}
}

// Request builds the edit request this spec describes.
func (s EditSpec) Request() (edit.Request, error) {
	if s.Pattern == "" {
		return edit.Request{}, errors.New("pattern is required")
	}
	loc, err := s.Locator()
	if err != nil {
		return edit.Request{}, err
	}
	return edit.Request{
		Pattern:     s.Pattern,
		Replacement: s.Replacement,
		Locator:     loc,
		PreviewOnly: s.Preview,
	}, nil
}

// MatchesSlug reports whether a document slug is selected by the spec's
// glob. Specs with explicit Targets never match by slug.
func (s EditSpec) MatchesSlug(slug string) bool {
	if s.SlugGlob == "" || len(s.Targets) > 0 {
		return false
	}
	ok, err := doublestar.Match(s.SlugGlob, slug)
	return err == nil && ok
}

// LoadEditSpecs parses a bulk-edit input file (JSON or YAML list).
func LoadEditSpecs(ctx context.Context, path string) ([]EditSpec, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading bulk edit file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading edit file: %w", err)
	}

	var specs []EditSpec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &specs); err != nil {
			return nil, errors.Errorf("parsing JSON edit file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &specs); err != nil {
			return nil, errors.Errorf("parsing YAML edit file: %w", err)
		}
	default:
		return nil, errors.Errorf("unsupported edit file extension %q", ext)
	}

	if len(specs) == 0 {
		return nil, errors.Errorf("no edits found in %s", path)
	}
	for i, spec := range specs {
		if _, err := spec.Request(); err != nil {
			return nil, errors.Errorf("edit %d: %w", i, err)
		}
		if len(spec.Targets) == 0 && spec.SlugGlob == "" {
			return nil, errors.Errorf("edit %d: targets or slug_glob is required", i)
		}
	}
	return specs, nil
}
