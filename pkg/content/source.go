package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/evalhub/evalhub/pkg/minio"
)

// RawDocument is one corpus file before parsing.
type RawDocument struct {
	// Path is the item path derived from the file location.
	Path string

	// Data is the raw file contents (frontmatter + markdown body).
	Data []byte
}

// Source is a place the content corpus can be loaded from.
// Implementations return the complete corpus on every call; the store
// replaces its snapshot wholesale, so there is no incremental protocol.
type Source interface {
	// Type returns the source type identifier, e.g. "dir" or "minio".
	Type() string

	// Load reads every corpus document.
	Load(ctx context.Context) ([]RawDocument, error)
}

// DirSource loads the corpus from a local directory tree of markdown files.
type DirSource struct {
	root string
}

// NewDirSource creates a Source reading from the given directory.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

func (s *DirSource) Type() string { return "dir" }

// Root returns the directory this source reads from. The watcher uses it
// to register filesystem notifications.
func (s *DirSource) Root() string { return s.root }

func (s *DirSource) Load(ctx context.Context) ([]RawDocument, error) {
	var docs []RawDocument

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !isMarkdown(p) {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		docs = append(docs, RawDocument{
			Path: PathFromFile(filepath.ToSlash(rel)),
			Data: data,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// MinioSource loads the corpus from an object-storage bucket. The corpus
// is published to the bucket by an external pipeline; this source only
// reads.
type MinioSource struct {
	client *minio.Minio
	prefix string
}

// NewMinioSource creates a Source reading markdown objects under prefix.
func NewMinioSource(client *minio.Minio, prefix string) *MinioSource {
	return &MinioSource{client: client, prefix: prefix}
}

func (s *MinioSource) Type() string { return "minio" }

// Client exposes the underlying object-store client so the application can
// attach its operation observer to it.
func (s *MinioSource) Client() *minio.Minio { return s.client }

func (s *MinioSource) Load(ctx context.Context) ([]RawDocument, error) {
	keys, err := s.client.List(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	var docs []RawDocument
	for _, key := range keys {
		if !isMarkdown(key) {
			continue
		}

		data, err := s.client.Get(ctx, key)
		if err != nil {
			return nil, err
		}

		docs = append(docs, RawDocument{
			Path: PathFromFile(strings.TrimPrefix(key, s.prefix)),
			Data: data,
		})
	}

	return docs, nil
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}
