package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Crawler scans a directory for definition documents.
type Crawler struct {
	ignored    []string
	extensions []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler() *Crawler {
	return &Crawler{
		ignored:    []string{".git", "vendor", "node_modules", "testdata"},
		extensions: []string{".json", ".yaml", ".yml"},
	}
}

// Ignore adds directory names that are never entered.
func (c *Crawler) Ignore(names ...string) {
	c.ignored = append(c.ignored, names...)
}

// ScanDir walks root and reports every definition document to onDoc.
// filepath.WalkDir visits entries in lexical order, so the sequence of paths
// is stable between runs.
func (c *Crawler) ScanDir(root string, onDoc func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories, never the root itself
		if d.IsDir() {
			if path == root {
				return nil
			}
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.isDocument(d.Name()) {
			return nil
		}
		return onDoc(path)
	})
}

func (c *Crawler) isDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range c.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
