package content

import (
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatter mirrors the YAML block at the top of every corpus document.
type frontmatter struct {
	Title            string           `yaml:"title"`
	Description      string           `yaml:"description"`
	UseCase          string           `yaml:"use_case"`
	Languages        []string         `yaml:"languages"`
	Tags             []string         `yaml:"tags"`
	Difficulty       string           `yaml:"difficulty"`
	Models           []string         `yaml:"models"`
	Metrics          []string         `yaml:"metrics"`
	SetupTime        string           `yaml:"setup_time"`
	RuntimeCost      string           `yaml:"runtime_cost"`
	DataRequirements string           `yaml:"data_requirements"`
	EvalType         string           `yaml:"eval_type"`
	Changelog        []ChangelogEntry `yaml:"changelog"`
}

const frontmatterDelimiter = "---"

// ParseDocument parses one corpus document into an EvalItem.
//
// itemPath is the routable path derived from the document location, e.g.
// "/evalite/rag/context-precision" for "evalite/rag/context-precision.md".
//
// The returned violations list the frontmatter problems found: missing
// required fields and enum values that were dropped. A document with
// violations in required fields is rejected (error return); enum
// violations are tolerated, the offending values are simply dropped so a
// sloppy document degrades instead of disappearing.
func ParseDocument(itemPath string, data []byte) (EvalItem, []string, error) {
	var violations []string

	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return EvalItem{}, nil, fmt.Errorf("%s: %w", itemPath, err)
	}

	var meta frontmatter
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return EvalItem{}, nil, fmt.Errorf("%s: invalid frontmatter: %w", itemPath, err)
	}

	framework := frameworkFromPath(itemPath)
	if !ValidFramework(framework) {
		return EvalItem{}, nil, fmt.Errorf("%s: unknown framework %q", itemPath, framework)
	}

	if meta.Title == "" {
		violations = append(violations, "missing title")
	}
	if meta.Description == "" {
		violations = append(violations, "missing description")
	}
	if len(violations) > 0 {
		return EvalItem{}, violations, fmt.Errorf("%s: %s", itemPath, strings.Join(violations, "; "))
	}

	item := EvalItem{
		Path:             itemPath,
		Framework:        framework,
		Title:            meta.Title,
		Description:      meta.Description,
		Models:           meta.Models,
		Metrics:          meta.Metrics,
		SetupTime:        meta.SetupTime,
		RuntimeCost:      meta.RuntimeCost,
		DataRequirements: meta.DataRequirements,
		EvalType:         meta.EvalType,
		Changelog:        meta.Changelog,
		Body:             body,
	}

	if meta.UseCase != "" {
		if ValidUseCase(meta.UseCase) {
			item.UseCase = meta.UseCase
		} else {
			violations = append(violations, fmt.Sprintf("unknown use_case %q", meta.UseCase))
		}
	}
	if meta.Difficulty != "" {
		if ValidDifficulty(meta.Difficulty) {
			item.Difficulty = meta.Difficulty
		} else {
			violations = append(violations, fmt.Sprintf("unknown difficulty %q", meta.Difficulty))
		}
	}
	for _, lang := range meta.Languages {
		if ValidLanguage(lang) {
			item.Languages = append(item.Languages, lang)
		} else {
			violations = append(violations, fmt.Sprintf("unknown language %q", lang))
		}
	}
	for _, tag := range meta.Tags {
		if ValidTag(tag) {
			item.Tags = append(item.Tags, tag)
		} else {
			violations = append(violations, fmt.Sprintf("unknown tag %q", tag))
		}
	}

	return item, violations, nil
}

// splitFrontmatter separates the leading YAML block from the markdown body.
func splitFrontmatter(data []byte) (fm []byte, body string, err error) {
	text := string(data)
	if !strings.HasPrefix(text, frontmatterDelimiter) {
		return nil, "", fmt.Errorf("document has no frontmatter block")
	}

	rest := strings.TrimPrefix(text, frontmatterDelimiter)
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")

	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx < 0 {
		return nil, "", fmt.Errorf("frontmatter block is not terminated")
	}

	fm = []byte(rest[:idx])
	body = rest[idx+len(frontmatterDelimiter)+1:]
	body = strings.TrimPrefix(body, "\r\n")
	body = strings.TrimPrefix(body, "\n")
	return fm, body, nil
}

// frameworkFromPath derives the framework slug from the first segment of
// an item path: "/evalite/rag/x" → "evalite".
func frameworkFromPath(itemPath string) string {
	cleaned := path.Clean("/" + strings.TrimPrefix(itemPath, "/"))
	segments := strings.Split(strings.TrimPrefix(cleaned, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

// PathFromFile converts a corpus-relative file name into an item path:
// "evalite/rag/context-precision.md" → "/evalite/rag/context-precision".
func PathFromFile(name string) string {
	name = strings.TrimSuffix(name, ".md")
	name = strings.TrimSuffix(name, ".markdown")
	return "/" + strings.Trim(strings.ReplaceAll(name, "\\", "/"), "/")
}
