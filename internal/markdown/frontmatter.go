package markdown

import (
	"bytes"
	"maps"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-texmark/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured frontmatter, the Markdown
// body without delimiters, and any error encountered.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse frontmatter").
			WithTextCode("MARKDOWN_FRONTMATTER_INVALID")
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// raw content, and modification time. A missing slug is derived from the
// title, then from the file name. BodyHTML is left empty so callers can
// render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	if fm.Slug == "" {
		fm.Slug = DeriveSlug(fm.Title, path)
	}

	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}, nil
}

// DeriveSlug normalises title into a slug, falling back to the base name of
// path without its extension.
func DeriveSlug(title, path string) string {
	for _, candidate := range []string{title, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))} {
		if strings.TrimSpace(candidate) == "" || candidate == "." {
			continue
		}
		if normalized, err := slug.Normalize(candidate); err == nil && normalized != "" {
			return normalized
		}
	}
	return ""
}

type frontMatterEnvelope struct {
	Title   string         `yaml:"title"`
	Slug    string         `yaml:"slug"`
	Summary string         `yaml:"summary"`
	Tags    []string       `yaml:"tags"`
	Date    time.Time      `yaml:"date"`
	Draft   bool           `yaml:"draft"`
	Math    *bool          `yaml:"math"`
	Custom  map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	raw := make(map[string]any, len(env.Custom)+7)
	maps.Copy(raw, env.Custom)

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Summary != "" {
		raw["summary"] = env.Summary
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if !env.Date.IsZero() {
		raw["date"] = env.Date
	}
	if env.Math != nil {
		raw["math"] = *env.Math
	}
	raw["draft"] = env.Draft

	var math *bool
	if env.Math != nil {
		value := *env.Math
		math = &value
	}

	return interfaces.FrontMatter{
		Title:   env.Title,
		Slug:    env.Slug,
		Summary: env.Summary,
		Tags:    append([]string(nil), env.Tags...),
		Date:    env.Date,
		Draft:   env.Draft,
		Math:    math,
		Custom:  maps.Clone(env.Custom),
		Raw:     raw,
	}
}
