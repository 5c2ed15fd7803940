// Package skills inventories the skill documentation bundles shipped next
// to the launcher. A bundle is any markdown file under the skills
// directory carrying YAML frontmatter with at least a description; the
// launcher only lists bundles, it never interprets or executes them.
package skills

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"yunshu/internal/logging"
	"yunshu/pkg/fileops"

	"github.com/adrg/frontmatter"
)

// maxManifestSize bounds how much of a bundle the scanner will read.
const maxManifestSize = 10 * 1024 * 1024 // 10MB

var markdownExtensions = []string{".md", ".mdown", ".mkdn", ".mkd", ".markdown"}

// manifest is the YAML frontmatter expected at the top of a bundle file.
type manifest struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description"`
	Version     string `yaml:"version,omitempty"`
}

// Skill is one discovered documentation bundle.
type Skill struct {
	// Name is the sanitized identifier, from frontmatter or the filename.
	Name string
	// Description comes from the required frontmatter field.
	Description string
	// Version is optional frontmatter metadata.
	Version string
	// Path is the manifest location relative to the skills directory.
	Path string
}

// List scans dir for skill bundles and returns them sorted by name. Files
// without valid frontmatter are skipped with a debug record, not treated
// as errors: the skills directory routinely holds supporting material.
func List(dir string, logger *logging.AppLogger) ([]Skill, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("skills directory unavailable: %w", err)
	}

	files, err := fileops.ScanWithFilter(dir, isMarkdownFile, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to scan skills directory: %w", err)
	}

	var result []Skill
	var skipped int
	for _, file := range files {
		skill, err := parseBundle(dir, file)
		if err != nil {
			logger.Debug("Skipping file", "path", file.Path, "reason", err)
			skipped++
			continue
		}
		result = append(result, *skill)
	}

	slices.SortFunc(result, func(a, b Skill) int {
		return strings.Compare(a.Name, b.Name)
	})

	logger.Info("Skill scan completed",
		"dir", dir,
		"bundles", len(result),
		"skipped", skipped,
	)
	return result, nil
}

func parseBundle(dir string, file fileops.FileInfo) (*Skill, error) {
	if err := fileops.ValidatePathSecurity(file.Path); err != nil {
		return nil, fmt.Errorf("path check failed: %w", err)
	}

	absolute := filepath.Join(dir, file.Path)
	if err := fileops.ValidateFileSizeLimit(absolute, maxManifestSize); err != nil {
		return nil, fmt.Errorf("size check failed: %w", err)
	}

	content, err := os.ReadFile(absolute)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var m manifest
	if _, err := frontmatter.Parse(bytes.NewReader(content), &m); err != nil {
		return nil, fmt.Errorf("no valid frontmatter: %w", err)
	}
	if strings.TrimSpace(m.Description) == "" {
		return nil, fmt.Errorf("missing required 'description' field")
	}

	// Unnamed bundles take their enclosing directory's name; manifest
	// files themselves tend to carry generic names like SKILL.md.
	name := m.Name
	if name == "" {
		if parent := filepath.Dir(file.Path); parent != "." {
			name = filepath.Base(parent)
		} else {
			name = strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
		}
	}
	sanitized, err := fileops.SanitizeIdentifier(name, 100)
	if err != nil {
		return nil, fmt.Errorf("unusable bundle name %q: %w", name, err)
	}

	return &Skill{
		Name:        sanitized,
		Description: strings.TrimSpace(m.Description),
		Version:     m.Version,
		Path:        file.Path,
	}, nil
}

func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(markdownExtensions, ext)
}
