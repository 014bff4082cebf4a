// Package manifest reads the YAML list of images preloaded into every new
// strip session.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/five82/imagestrip/internal/strip"
)

// Entry names exactly one source.
type Entry struct {
	File string `yaml:"file,omitempty"`
	URL  string `yaml:"url,omitempty"`
}

// Manifest is the decoded document.
type Manifest struct {
	Images []Entry `yaml:"images"`
}

// Load reads path. A missing file yields an empty manifest. Relative file
// entries resolve against the manifest's directory.
func Load(path string) ([]strip.Resource, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a manifest document, resolving relative files against baseDir.
func Parse(data []byte, baseDir string) ([]strip.Resource, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	resources := make([]strip.Resource, 0, len(m.Images))
	for i, e := range m.Images {
		file := strings.TrimSpace(e.File)
		u := strings.TrimSpace(e.URL)
		switch {
		case file != "" && u == "":
			if !filepath.IsAbs(file) && baseDir != "" {
				file = filepath.Join(baseDir, file)
			}
			resources = append(resources, strip.FileResource(file))
		case u != "" && file == "":
			resources = append(resources, strip.URLResource(u))
		default:
			return nil, fmt.Errorf("manifest entry %d: %w: exactly one of file or url is required", i, strip.ErrUnsupportedResourceKind)
		}
	}
	return resources, nil
}

// Save writes resources as a manifest document.
func Save(path string, resources []strip.Resource) error {
	m := Manifest{Images: make([]Entry, 0, len(resources))}
	for _, res := range resources {
		switch res.Kind {
		case strip.KindFile:
			m.Images = append(m.Images, Entry{File: res.Location})
		case strip.KindURL:
			m.Images = append(m.Images, Entry{URL: res.Location})
		default:
			return fmt.Errorf("%w: %s", strip.ErrUnsupportedResourceKind, res.Kind)
		}
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
