package loader

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dshills/linkguard/internal/config/layer"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/linkguard.toml", `
[links]
attributeKeys = ["linkHref", "anchorHref"]
mergeOverlapping = false

[warnings]
message = "no nesting"

[commands]
link = "linkHref"
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/linkguard.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, _ := layer.GetByPath(config, "links.mergeOverlapping"); val != false {
		t.Errorf("links.mergeOverlapping = %v, want false", val)
	}
	if val, _ := layer.GetByPath(config, "links.attributeKeys"); !reflect.DeepEqual(val, []any{"linkHref", "anchorHref"}) {
		t.Errorf("links.attributeKeys = %v", val)
	}
	if val, _ := layer.GetByPath(config, "commands.link"); val != "linkHref" {
		t.Errorf("commands.link = %v", val)
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/linkguard.yaml", `
links:
  maxPasses: 4
warnings:
  show: false
`)

	config, err := NewYAMLLoaderWithFS(memfs, "/linkguard.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if val, _ := layer.GetByPath(config, "links.maxPasses"); val != 4 {
		t.Errorf("links.maxPasses = %v (%T), want 4", val, val)
	}
	if val, _ := layer.GetByPath(config, "warnings.show"); val != false {
		t.Errorf("warnings.show = %v, want false", val)
	}
}

func TestLoaders_NonExistent(t *testing.T) {
	memfs := NewMemFS()
	for _, l := range []FileLoader{
		NewTOMLLoaderWithFS(memfs, "/missing.toml"),
		NewYAMLLoaderWithFS(memfs, "/missing.yaml"),
	} {
		config, err := l.Load()
		if err != nil || config != nil {
			t.Errorf("%T: expected nil, nil for a missing file, got %v, %v", l, config, err)
		}
	}
}

func TestLoaders_Invalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[links\nkeys = ")
	memfs.AddFile("/bad.yaml", "links: [\n")

	tests := []struct {
		path     string
		wantLine bool
	}{
		{"/bad.toml", true},
		{"/bad.yaml", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l, err := ForPath(memfs, tt.path)
			if err != nil {
				t.Fatalf("ForPath: %v", err)
			}
			_, err = l.Load()
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T (%v)", err, err)
			}
			if parseErr.Path != tt.path {
				t.Errorf("ParseError.Path = %q, want %q", parseErr.Path, tt.path)
			}
			if tt.wantLine && parseErr.Line == 0 {
				t.Error("expected a line number")
			}
			if parseErr.Unwrap() == nil {
				t.Error("expected an underlying error")
			}
		})
	}
}

func TestLoaders_FromReader(t *testing.T) {
	toml, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[logging]\nlevel = \"debug\"\n"))
	if err != nil {
		t.Fatalf("TOML LoadFromReader: %v", err)
	}
	yml, err := NewYAMLLoader("").LoadFromReader(strings.NewReader("logging:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("YAML LoadFromReader: %v", err)
	}
	if !reflect.DeepEqual(toml, yml) {
		t.Errorf("formats disagree: %v vs %v", toml, yml)
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.toml", "*loader.TOMLLoader"},
		{"a.TOML", "*loader.TOMLLoader"},
		{"a.yaml", "*loader.YAMLLoader"},
		{"a.yml", "*loader.YAMLLoader"},
	}
	for _, tt := range tests {
		l, err := ForPath(nil, tt.path)
		if err != nil {
			t.Fatalf("ForPath(%q): %v", tt.path, err)
		}
		if got := reflect.TypeOf(l).String(); got != tt.want {
			t.Errorf("ForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}

	if _, err := ForPath(nil, "a.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadWithIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/etc/base.yaml", `
links:
  mergeOverlapping: false
  maxPasses: 8
warnings:
  message: base
`)
	memfs.AddFile("/etc/linkguard.toml", `
"@include" = "base.yaml"

[links]
maxPasses = 4
`)

	config, err := LoadWithIncludes(memfs, "/etc/linkguard.toml", 5)
	if err != nil {
		t.Fatalf("LoadWithIncludes failed: %v", err)
	}
	if _, ok := config[IncludeKey]; ok {
		t.Error("include directive should be removed")
	}
	if val, _ := layer.GetByPath(config, "links.maxPasses"); val != int64(4) {
		t.Errorf("including file should win, got %v (%T)", val, val)
	}
	if val, _ := layer.GetByPath(config, "links.mergeOverlapping"); val != false {
		t.Errorf("included value missing, got %v", val)
	}
	if val, _ := layer.GetByPath(config, "warnings.message"); val != "base" {
		t.Errorf("warnings.message = %v, want base", val)
	}
}

func TestLoadWithIncludes_DepthExceeded(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = "b.toml"`)
	memfs.AddFile("/b.toml", `"@include" = "a.toml"`)

	if _, err := LoadWithIncludes(memfs, "/a.toml", 3); err == nil {
		t.Error("expected an error for cyclic includes")
	}
}
