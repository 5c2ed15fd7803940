package fileops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestScanWithFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "# a")
	writeFile(t, filepath.Join(root, "nested", "b.md"), "# b")
	writeFile(t, filepath.Join(root, "nested", "notes.txt"), "text")
	writeFile(t, filepath.Join(root, ".git", "c.md"), "# hidden")
	writeFile(t, filepath.Join(root, "__pycache__", "d.md"), "# cache")

	isMarkdown := func(name string) bool {
		return strings.HasSuffix(name, ".md")
	}

	files, err := ScanWithFilter(root, isMarkdown, 10)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		got[f.Path] = true
	}

	if len(files) != 2 {
		t.Errorf("expected 2 files, got %d: %v", len(files), got)
	}
	if !got["a.md"] {
		t.Error("expected a.md in results")
	}
	if !got[filepath.Join("nested", "b.md")] {
		t.Error("expected nested/b.md in results")
	}
	if got[filepath.Join(".git", "c.md")] {
		t.Error(".git contents should be skipped")
	}
}

func TestScanWithFilter_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.md"), "# top")
	writeFile(t, filepath.Join(root, "one", "two", "deep.md"), "# deep")

	files, err := ScanWithFilter(root, nil, 1)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	for _, f := range files {
		if strings.Contains(f.Path, "deep") {
			t.Errorf("file beyond max depth included: %s", f.Path)
		}
	}
}

func TestScanWithFilter_MissingRoot(t *testing.T) {
	_, err := ScanWithFilter(filepath.Join(t.TempDir(), "nope"), nil, 5)
	if err == nil {
		t.Error("expected error for missing root")
	}
}

func TestValidatePathSecurity(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid relative path", "skills/writer/SKILL.md", false},
		{"empty path", "", true},
		{"parent traversal", "../etc/passwd", true},
		{"embedded traversal", "skills/../../secret", true},
		{"null byte", "skills/a\x00b.md", true},
		{"dots inside a filename", "skills/notes..md", false},
		{"dots inside a directory name", "skills/v1..v2/SKILL.md", false},
		{"bare double dot segment", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathSecurity(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathSecurity(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.md")
	writeFile(t, path, strings.Repeat("x", 100))

	if err := ValidateFileSizeLimit(path, 200); err != nil {
		t.Errorf("file under limit should pass: %v", err)
	}
	if err := ValidateFileSizeLimit(path, 50); err == nil {
		t.Error("file over limit should fail")
	}
	if err := ValidateFileSizeLimit(filepath.Join(t.TempDir(), "missing"), 50); err == nil {
		t.Error("missing file should fail")
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int
		want    string
		wantErr bool
	}{
		{"simple", "Novel Writer", 50, "novel_writer", false},
		{"hyphens and dots", "skill-factory.v2", 50, "skill_factory_v2", false},
		{"collapses runs", "a  -  b", 50, "a_b", false},
		{"truncates", "abcdefghij", 5, "abcde", false},
		{"strips edges", "__edge__", 50, "edge", false},
		{"nothing usable", "!!!###", 50, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeIdentifier(tt.input, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
