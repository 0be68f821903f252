// Package output handles file naming and writing for htmd outputs.
// URL inputs are named after the domain and path (e.g., example_com_docs.md),
// or mirror the URL path structure when Mirror is set. File inputs keep
// their base name with the new extension; stdin is written as "stdin".
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
	Mirror    bool
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data for the given input source and returns the path written.
func (w *Writer) Write(source string, data []byte, ext string) (string, error) {
	rel, err := w.relPath(source)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(w.OutputDir, rel+ext)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func (w *Writer) relPath(source string) (string, error) {
	switch {
	case source == "-" || source == "":
		return "stdin", nil
	case !IsURL(source):
		base := filepath.Base(source)
		return sanitize(strings.TrimSuffix(base, filepath.Ext(base))), nil
	case w.Mirror:
		return mirrorPath(source)
	}
	return filenameFromURL(source), nil
}

// IsURL reports whether source is an http(s) URL rather than a file path.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// mirrorPath maps a URL path onto a relative file path.
// Example: https://site.com/docs/intro → docs/intro
func mirrorPath(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	urlPath := strings.TrimSuffix(parsed.Path, "/")
	if urlPath == "" {
		urlPath = "/index"
	}
	segments := strings.Split(strings.TrimPrefix(urlPath, "/"), "/")
	for i, seg := range segments {
		segments[i] = sanitize(seg)
	}
	return filepath.Join(segments...), nil
}

// filenameFromURL converts a URL into a flat filename.
// Example: https://example.com/docs/intro → example_com_docs_intro
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return sanitize(rawURL)
	}

	parts := []string{sanitize(parsed.Host)}
	path := strings.Trim(parsed.Path, "/")
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize replaces characters other than ASCII letters, digits, '-' and
// '_' with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
