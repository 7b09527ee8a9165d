package content

import (
	"time"

	"github.com/evalhub/evalhub/pkg/minio"
)

// Config defines where the content corpus is loaded from and how reloads
// behave.
type Config struct {
	// SourceType selects the corpus source: "dir" or "minio".
	// Default: "dir"
	SourceType string `yaml:"source_type" envconfig:"CONTENT_SOURCE_TYPE"`

	// Dir is the corpus directory for the "dir" source.
	// Default: "./content"
	Dir string `yaml:"dir" envconfig:"CONTENT_DIR"`

	// Prefix is the object-key prefix for the "minio" source.
	Prefix string `yaml:"prefix" envconfig:"CONTENT_PREFIX"`

	// Minio holds the object-store connection for the "minio" source.
	Minio minio.Config `yaml:"minio"`

	// Watch enables automatic reloads when corpus files change.
	// Only effective with the "dir" source.
	Watch bool `yaml:"watch" envconfig:"CONTENT_WATCH"`

	// DebounceInterval is how long the watcher waits after the last file
	// event before reloading, coalescing bursts of events into one reload.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval" envconfig:"CONTENT_DEBOUNCE_INTERVAL"`

	// Parallelism bounds how many documents are parsed concurrently
	// during a reload.
	// Default: 8
	Parallelism int `yaml:"parallelism" envconfig:"CONTENT_PARALLELISM"`
}

// Logger defines the interface for logging operations in the content package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

const (
	DefaultSourceType       = "dir"
	DefaultDir              = "./content"
	DefaultDebounceInterval = 100 * time.Millisecond
	DefaultParallelism      = 8
)
