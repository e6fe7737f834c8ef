package defs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is one knowledge-base tree read from disk.
type Document struct {
	Name string // "!name" annotation, or the file's base name
	Path string
	Root *Node
}

// LoadFile reads, parses and optionally validates a document. The returned
// tree is raw; callers sanitize it before building a table.
func LoadFile(path string, validate bool) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions %s: %w", path, err)
	}
	root, err := Parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse definitions %s: %w", path, err)
	}
	if validate {
		if err := Validate(root); err != nil {
			return nil, fmt.Errorf("definitions %s: %w", path, err)
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if v, ok := root.Meta("!name"); ok {
		if s, isStr := v.(string); isStr && s != "" {
			name = s
		}
	}
	return &Document{Name: name, Path: path, Root: root}, nil
}
