package content

import "html/template"

// EvalItem is one catalog entry: an evaluation pattern for a specific
// framework, parsed from a markdown document with YAML frontmatter.
//
// Path doubles as the unique identifier and the routable location of the
// item, e.g. "/evalite/rag/context-precision". Framework is derived from
// the first path segment at ingest time.
type EvalItem struct {
	Path        string `json:"path"`
	Framework   string `json:"framework"`
	Title       string `json:"title"`
	Description string `json:"description"`

	UseCase    string   `json:"use_case,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`

	Models           []string `json:"models,omitempty"`
	Metrics          []string `json:"metrics,omitempty"`
	SetupTime        string   `json:"setup_time,omitempty"`
	RuntimeCost      string   `json:"runtime_cost,omitempty"`
	DataRequirements string   `json:"data_requirements,omitempty"`
	EvalType         string   `json:"eval_type,omitempty"`

	// Changelog entries are ordered newest first.
	Changelog []ChangelogEntry `json:"changelog,omitempty"`

	// Body is the raw markdown below the frontmatter.
	Body string `json:"-"`

	// HTML is the rendered body, populated at ingest.
	HTML template.HTML `json:"-"`
}

// ChangelogEntry records one released revision of an item.
type ChangelogEntry struct {
	Version string `json:"version" yaml:"version"`
	Date    string `json:"date" yaml:"date"`
	Author  string `json:"author" yaml:"author"`
	Changes string `json:"changes,omitempty" yaml:"changes"`
}

// Closed enumerations. Values outside these sets are dropped at the
// ingest boundary (with a validation report) and when parsing filter
// parameters from URLs.

// UseCases enumerates what kind of system an evaluation pattern targets.
var UseCases = []string{
	"rag",
	"chatbot",
	"agent",
	"summarization",
	"classification",
	"code-generation",
	"extraction",
	"safety",
}

// Languages enumerates implementation languages a snippet may ship in.
var Languages = []string{
	"python",
	"typescript",
	"javascript",
	"go",
}

// Difficulties is the fixed 3-level difficulty scale.
var Difficulties = []string{
	"beginner",
	"intermediate",
	"advanced",
}

// Frameworks enumerates the evaluation frameworks the catalog covers.
// The first segment of every item path must be one of these.
var Frameworks = []string{
	"evalite",
	"langsmith",
	"deepeval",
	"ragas",
	"promptfoo",
	"braintrust",
	"phoenix",
	"openai-evals",
}

// TagCategories groups the tag enumeration for display purposes.
// Filtering treats all tags uniformly; the grouping only drives how the
// UI renders badge sections.
var TagCategories = map[string][]string{
	"metrics": {
		"accuracy",
		"faithfulness",
		"relevance",
		"precision",
		"recall",
		"hallucination",
		"toxicity",
		"latency",
		"cost",
	},
	"concerns": {
		"safety",
		"bias",
		"robustness",
		"privacy",
		"security",
	},
	"stage": {
		"development",
		"testing",
		"ci",
		"production",
		"monitoring",
	},
}

var (
	useCaseSet    = toSet(UseCases)
	languageSet   = toSet(Languages)
	difficultySet = toSet(Difficulties)
	frameworkSet  = toSet(Frameworks)
	tagSet        = tagUnion()
)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func tagUnion() map[string]struct{} {
	set := make(map[string]struct{})
	for _, values := range TagCategories {
		for _, v := range values {
			set[v] = struct{}{}
		}
	}
	return set
}

// ValidUseCase reports whether v is a member of the use-case enumeration.
func ValidUseCase(v string) bool {
	_, ok := useCaseSet[v]
	return ok
}

// ValidLanguage reports whether v is a member of the language enumeration.
func ValidLanguage(v string) bool {
	_, ok := languageSet[v]
	return ok
}

// ValidDifficulty reports whether v is a member of the difficulty enumeration.
func ValidDifficulty(v string) bool {
	_, ok := difficultySet[v]
	return ok
}

// ValidFramework reports whether v is a member of the framework enumeration.
func ValidFramework(v string) bool {
	_, ok := frameworkSet[v]
	return ok
}

// ValidTag reports whether v is a member of any tag category.
func ValidTag(v string) bool {
	_, ok := tagSet[v]
	return ok
}

// AllTags returns the union of all tag categories, in no particular order.
func AllTags() []string {
	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	return tags
}
