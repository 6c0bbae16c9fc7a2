// ABOUTME: Loads plain-text documents from files and directories for ingestion
// ABOUTME: Accepts .txt and .md files; source IDs are cleaned slash paths
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/docqa/internal/pipeline"
)

// textExtensions lists the file extensions treated as plain text.
var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// LoadPath loads documents from a file or directory. A single file is loaded
// regardless of extension; a directory is walked recursively and filtered to
// text extensions.
func LoadPath(path string) ([]pipeline.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return LoadDir(path)
	}

	doc, err := loadFile(path, filepath.ToSlash(filepath.Clean(path)))
	if err != nil {
		return nil, err
	}
	return []pipeline.Document{doc}, nil
}

// LoadDir walks a directory recursively and loads every .txt and .md file.
// Source IDs are paths relative to the directory root, slash-separated so
// they are stable across platforms.
func LoadDir(dir string) ([]pipeline.Document, error) {
	var docs []pipeline.Document

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if !textExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		doc, err := loadFile(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return docs, nil
}

func loadFile(path, sourceID string) (pipeline.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return pipeline.Document{SourceID: sourceID, Text: string(data)}, nil
}
