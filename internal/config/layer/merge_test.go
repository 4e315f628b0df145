package layer

import (
	"reflect"
	"testing"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		dst      map[string]any
		src      map[string]any
		expected map[string]any
	}{
		{
			name:     "nil dst",
			dst:      nil,
			src:      map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil src",
			dst:      map[string]any{"a": 1},
			src:      nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "src overrides dst",
			dst:      map[string]any{"a": 1},
			src:      map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name: "nested merge",
			dst: map[string]any{
				"links": map[string]any{"mergeOverlapping": true},
			},
			src: map[string]any{
				"links": map[string]any{"maxPasses": 4},
			},
			expected: map[string]any{
				"links": map[string]any{"mergeOverlapping": true, "maxPasses": 4},
			},
		},
		{
			name: "nested override",
			dst: map[string]any{
				"warnings": map[string]any{"show": true},
			},
			src: map[string]any{
				"warnings": map[string]any{"show": false},
			},
			expected: map[string]any{
				"warnings": map[string]any{"show": false},
			},
		},
		{
			name: "slices are replaced",
			dst: map[string]any{
				"links": map[string]any{"attributeKeys": []any{"linkHref", "anchorHref"}},
			},
			src: map[string]any{
				"links": map[string]any{"attributeKeys": []any{"refHref"}},
			},
			expected: map[string]any{
				"links": map[string]any{"attributeKeys": []any{"refHref"}},
			},
		},
		{
			name: "commands merge key by key",
			dst: map[string]any{
				"commands": map[string]any{"link": "linkHref", "email": "emailHref"},
			},
			src: map[string]any{
				"commands": map[string]any{"link": "anchorHref", "doc": "documentHref"},
			},
			expected: map[string]any{
				"commands": map[string]any{"link": "anchorHref", "email": "emailHref", "doc": "documentHref"},
			},
		},
		{
			name: "empty list replaces",
			dst: map[string]any{
				"links": map[string]any{"attributeKeys": []any{"linkHref"}},
			},
			src: map[string]any{
				"links": map[string]any{"attributeKeys": []any{}},
			},
			expected: map[string]any{
				"links": map[string]any{"attributeKeys": []any{}},
			},
		},
		{
			name: "string list becomes a generic list",
			dst: map[string]any{
				"links": map[string]any{"attributeKeys": []any{"linkHref"}},
			},
			src: map[string]any{
				"links": map[string]any{"attributeKeys": []string{"refHref", "mailHref"}},
			},
			expected: map[string]any{
				"links": map[string]any{"attributeKeys": []any{"refHref", "mailHref"}},
			},
		},
		{
			name: "null keeps the lower value",
			dst: map[string]any{
				"commands": map[string]any{"link": "linkHref"},
				"warnings": map[string]any{"message": "no nesting"},
			},
			src: map[string]any{
				"commands": nil,
				"warnings": map[string]any{"message": nil},
			},
			expected: map[string]any{
				"commands": map[string]any{"link": "linkHref"},
				"warnings": map[string]any{"message": "no nesting"},
			},
		},
		{
			name:     "null for a new key is dropped",
			dst:      map[string]any{},
			src:      map[string]any{"logging": nil},
			expected: map[string]any{},
		},
		{
			name:     "map overwrites scalar",
			dst:      map[string]any{"commands": "none"},
			src:      map[string]any{"commands": map[string]any{"link": "linkHref"}},
			expected: map[string]any{"commands": map[string]any{"link": "linkHref"}},
		},
		{
			name:     "non-map overwrites map",
			dst:      map[string]any{"value": map[string]any{"a": 1}},
			src:      map[string]any{"value": "string"},
			expected: map[string]any{"value": "string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DeepMerge(tt.dst, tt.src)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("DeepMerge() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDeepMergeListDoesNotAlias(t *testing.T) {
	keys := []any{"linkHref"}
	dst := DeepMerge(nil, map[string]any{"links": map[string]any{"attributeKeys": keys}})

	got, _ := GetByPath(dst, "links.attributeKeys")
	got.([]any)[0] = "anchorHref"
	if keys[0] != "linkHref" {
		t.Errorf("source list was modified through the merge result: %v", keys)
	}
}

func TestDeepMergeDoesNotAlias(t *testing.T) {
	src := map[string]any{"commands": map[string]any{"link": "linkHref"}}
	dst := DeepMerge(nil, src)

	SetByPath(dst, "commands.link", "anchorHref")
	if val, _ := GetByPath(src, "commands.link"); val != "linkHref" {
		t.Errorf("source was modified through the merge result: %v", val)
	}
}

func TestMerge(t *testing.T) {
	env := New("env", SourceEnv, map[string]any{
		"warnings": map[string]any{"show": false},
	})
	file := New("file", SourceFile, map[string]any{
		"warnings": map[string]any{"show": true, "message": "nope"},
		"logging":  map[string]any{"level": "debug"},
	})
	defaults := New("defaults", SourceBuiltin, map[string]any{
		"logging": map[string]any{"level": "info", "format": "text"},
	})

	got := Merge(env, nil, file, defaults)
	want := map[string]any{
		"warnings": map[string]any{"show": false, "message": "nope"},
		"logging":  map[string]any{"level": "debug", "format": "text"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
}

func TestMergeEqualPriorityKeepsOrder(t *testing.T) {
	a := New("a", SourceFile, map[string]any{"k": "a"})
	b := New("b", SourceFile, map[string]any{"k": "b"})

	if got := Merge(a, b)["k"]; got != "b" {
		t.Errorf("expected later layer to win, got %v", got)
	}
}

func TestLayerClone(t *testing.T) {
	l := New("file", SourceFile, map[string]any{"links": map[string]any{"maxPasses": 8}})
	l.Path = "/etc/linkguard.toml"

	c := l.Clone()
	SetByPath(c.Data, "links.maxPasses", 2)
	if val, _ := GetByPath(l.Data, "links.maxPasses"); val != 8 {
		t.Errorf("clone shares data with the original: %v", val)
	}
	if c.Path != l.Path || c.Priority != PriorityFile {
		t.Errorf("unexpected clone %+v", c)
	}
}

func TestSourcePriority(t *testing.T) {
	tests := []struct {
		source Source
		name   string
		prio   int
	}{
		{SourceBuiltin, "builtin", PriorityBuiltin},
		{SourceFile, "file", PriorityFile},
		{SourceEnv, "environment", PriorityEnv},
		{SourceArgs, "arguments", PriorityArgs},
		{Source(99), "unknown", PriorityBuiltin},
	}
	for _, tt := range tests {
		if got := tt.source.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := DefaultPriority(tt.source); got != tt.prio {
			t.Errorf("DefaultPriority(%v) = %d, want %d", tt.source, got, tt.prio)
		}
	}
}

func TestGetByPath(t *testing.T) {
	data := map[string]any{
		"links": map[string]any{
			"maxPasses": 4,
			"nested": map[string]any{
				"deep": "value",
			},
		},
		"simple": "string",
	}

	tests := []struct {
		path     string
		expected any
		found    bool
	}{
		{"links.maxPasses", 4, true},
		{"links.nested.deep", "value", true},
		{"simple", "string", true},
		{"nonexistent", nil, false},
		{"links.nonexistent", nil, false},
		{"links.maxPasses.invalid", nil, false},
	}

	for _, tt := range tests {
		val, found := GetByPath(data, tt.path)
		if found != tt.found {
			t.Errorf("GetByPath(%q): found = %v, want %v", tt.path, found, tt.found)
		}
		if found && val != tt.expected {
			t.Errorf("GetByPath(%q) = %v, want %v", tt.path, val, tt.expected)
		}
	}

	if _, found := GetByPath(nil, "any.path"); found {
		t.Error("expected found = false for nil data")
	}
}

func TestSetByPath(t *testing.T) {
	data := map[string]any{
		"links": map[string]any{"maxPasses": 4},
	}

	SetByPath(data, "links.maxPasses", 2)
	SetByPath(data, "warnings.show", true)
	SetByPath(data, "deep.nested.path.value", "test")

	if val, _ := GetByPath(data, "links.maxPasses"); val != 2 {
		t.Errorf("links.maxPasses = %v, want 2", val)
	}
	if val, _ := GetByPath(data, "warnings.show"); val != true {
		t.Errorf("warnings.show = %v, want true", val)
	}
	if val, _ := GetByPath(data, "deep.nested.path.value"); val != "test" {
		t.Errorf("deep.nested.path.value = %v, want 'test'", val)
	}
}
