package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcncl/jsettings/internal/config"
	"github.com/mcncl/jsettings/internal/errors"
	"github.com/mcncl/jsettings/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSettings = "// Otter Browser settings\n\n{\n\t\"Browser\": {\n\t\t\"HomePage\": \"about:blank\",\n\t\t\"Geometry\": \"10, 20, 800, 600\"\n\t},\n\t\"Search\": [\n\t\t\"duckduckgo\"\n\t]\n}\n"

func newTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Context{Debug: false, Config: config.NewConfig(), Out: &out}, &out
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "options.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFmtCmd_RewritesInCanonicalLayout(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, "// header\n{\"b\":1,\"a\":[true,null]}")

	cmd := &FmtCmd{File: path}
	require.NoError(t, cmd.Run(ctx))

	assert.Equal(t, "// header\n\n{\n\t\"b\": 1,\n\t\"a\": [\n\t\ttrue,\n\t\tnull\n\t]\n}\n", readFile(t, path))
}

func TestFmtCmd_WithOutputFile(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)
	output := filepath.Join(t.TempDir(), "formatted.json")

	cmd := &FmtCmd{File: path, Output: output}
	require.NoError(t, cmd.Run(ctx))

	assert.Equal(t, sampleSettings, readFile(t, output))
	assert.Equal(t, sampleSettings, readFile(t, path))
}

func TestFmtCmd_MissingFile(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := filepath.Join(t.TempDir(), "missing.json")

	err := (&FmtCmd{File: path}).Run(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInput, errors.TypeOf(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "fmt must not create a missing file")
}

func TestFmtCmd_Directory(t *testing.T) {
	ctx, _ := newTestContext(t)

	err := (&FmtCmd{File: t.TempDir()}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "is a directory")
}

func TestGetCmd_PrintsValue(t *testing.T) {
	ctx, out := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&GetCmd{File: path, Key: "Browser.HomePage"}).Run(ctx))
	assert.Equal(t, "\"about:blank\"\n", out.String())
}

func TestGetCmd_PrintsNestedValue(t *testing.T) {
	ctx, out := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&GetCmd{File: path, Key: "Search"}).Run(ctx))
	assert.Equal(t, "[\n\t\"duckduckgo\"\n]\n", out.String())
}

func TestGetCmd_MissingKey(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	err := (&GetCmd{File: path, Key: "Browser.Missing"}).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrKeyNotFound)
}

func TestGetCmd_ResolvesKeyCase(t *testing.T) {
	ctx, out := newTestContext(t)
	ctx.Config.Keys.Case = config.CaseCamel
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&GetCmd{File: path, Key: "browser.home_page"}).Run(ctx))
	assert.Equal(t, "\"about:blank\"\n", out.String())
}

func TestGetCmd_ResolvesAlias(t *testing.T) {
	ctx, out := newTestContext(t)
	ctx.Config.Keys.Aliases["engine"] = "Search.0"
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&GetCmd{File: path, Key: "engine"}).Run(ctx))
	assert.Equal(t, "\"duckduckgo\"\n", out.String())
}

func TestSetCmd_UpdatesValueAndKeepsOrder(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&SetCmd{File: path, Key: "Browser.HomePage", Value: "https://otter-browser.org"}).Run(ctx))

	content := readFile(t, path)
	assert.Contains(t, content, "\t\t\"HomePage\": \"https://otter-browser.org\",\n\t\t\"Geometry\"")
	assert.Contains(t, content, "// Otter Browser settings\n\n")
}

func TestSetCmd_ParsesJSONValues(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, "{}")

	require.NoError(t, (&SetCmd{File: path, Key: "Count", Value: "42"}).Run(ctx))
	require.NoError(t, (&SetCmd{File: path, Key: "Enabled", Value: "true"}).Run(ctx))
	require.NoError(t, (&SetCmd{File: path, Key: "List", Value: "[1,2]"}).Run(ctx))
	require.NoError(t, (&SetCmd{File: path, Key: "Text", Value: "42", String: true}).Run(ctx))

	assert.Equal(t, "{\n\t\"Count\": 42,\n\t\"Enabled\": true,\n\t\"List\": [\n\t\t1,\n\t\t2\n\t],\n\t\"Text\": \"42\"\n}\n", readFile(t, path))
}

func TestSetCmd_CreatesFileWithDefaultComment(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Config.DefaultComment = "generated\nby jsettings"
	path := filepath.Join(t.TempDir(), "new.json")

	require.NoError(t, (&SetCmd{File: path, Key: "Browser.HomePage", Value: "about:start"}).Run(ctx))

	assert.Equal(t, "// generated\n// by jsettings\n\n{\n\t\"Browser\": {\n\t\t\"HomePage\": \"about:start\"\n\t}\n}\n", readFile(t, path))
}

func TestSetCmd_ReadOnlyKey(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Config.Keys.ReadOnly = []config.KeyRule{{Pattern: `^Browser\.`, Comment: "managed"}}
	path := writeSettings(t, sampleSettings)

	err := (&SetCmd{File: path, Key: "Browser.HomePage", Value: "x"}).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrReadOnlyKey)
	assert.Equal(t, "Value error: 'Browser.HomePage' is read-only (managed)", errors.UserFriendlyError(err))

	// File untouched
	assert.Equal(t, sampleSettings, readFile(t, path))
}

func TestSetCmd_DirectWrite(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Config.Atomic = false
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&SetCmd{File: path, Key: "Search.-1", Value: "startpage"}).Run(ctx))
	assert.Contains(t, readFile(t, path), "\t\t\"duckduckgo\",\n\t\t\"startpage\"\n")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		asString bool
		expected models.JSONValue
	}{
		{"string fallback", "hello world", false, "hello world"},
		{"quoted string", `"quoted"`, false, "quoted"},
		{"number keeps literal", "3.50", false, json.Number("3.50")},
		{"boolean", "false", false, false},
		{"null", "null", false, nil},
		{"forced string", "true", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseValue(tt.raw, tt.asString))
		})
	}
}

func TestParseValue_Object(t *testing.T) {
	value := parseValue(`{"b":1,"a":2}`, false)

	obj, ok := value.(*models.JSONObject)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, obj.Keys())
}

func TestDeleteCmd_RemovesKey(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&DeleteCmd{File: path, Key: "Browser.Geometry"}).Run(ctx))

	content := readFile(t, path)
	assert.NotContains(t, content, "Geometry")
	assert.Contains(t, content, "\t\t\"HomePage\": \"about:blank\"\n\t},")
}

func TestDeleteCmd_MissingKey(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	err := (&DeleteCmd{File: path, Key: "Nope"}).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrKeyNotFound)
	assert.Equal(t, sampleSettings, readFile(t, path))
}

func TestCommentCmd_Print(t *testing.T) {
	ctx, out := newTestContext(t)
	path := writeSettings(t, "// first\n// second\n\n{}\n")

	require.NoError(t, (&CommentCmd{File: path}).Run(ctx))
	assert.Equal(t, "first\nsecond\n", out.String())
}

func TestCommentCmd_SetAndClear(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&CommentCmd{File: path, Set: `line one\nline two`}).Run(ctx))
	assert.True(t, strings.HasPrefix(readFile(t, path), "// line one\n// line two\n\n{"))

	require.NoError(t, (&CommentCmd{File: path, Clear: true}).Run(ctx))
	assert.True(t, strings.HasPrefix(readFile(t, path), "{\n"))
}

func TestCommentCmd_ClearIgnoresDefaultComment(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Config.DefaultComment = "default"
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&CommentCmd{File: path, Clear: true}).Run(ctx))
	assert.NotContains(t, readFile(t, path), "//")
}

func TestCommentCmd_SetAndClearConflict(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	err := (&CommentCmd{File: path, Set: "x", Clear: true}).Run(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInput, errors.TypeOf(err))
}

func TestRectCmd_Print(t *testing.T) {
	ctx, out := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&RectCmd{File: path, Key: "Browser.Geometry"}).Run(ctx))
	assert.Equal(t, "x=10 y=20 width=800 height=600\n", out.String())
}

func TestRectCmd_PrintMissingIsNull(t *testing.T) {
	ctx, out := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&RectCmd{File: path, Key: "Browser.Missing"}).Run(ctx))
	assert.Equal(t, "x=0 y=0 width=0 height=0\n", out.String())
}

func TestRectCmd_Set(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	require.NoError(t, (&RectCmd{File: path, Key: "Browser.Geometry", Set: "1,2,3,4"}).Run(ctx))
	assert.Contains(t, readFile(t, path), "\"Geometry\": \"1, 2, 3, 4\"")
}

func TestRectCmd_SetInvalid(t *testing.T) {
	ctx, _ := newTestContext(t)
	path := writeSettings(t, sampleSettings)

	for _, geometry := range []string{"10 20 800 600", "1, 2, 3", "1, 2, wide, 4"} {
		err := (&RectCmd{File: path, Key: "Browser.Geometry", Set: geometry}).Run(ctx)
		require.Error(t, err, "geometry %q", geometry)
		assert.Equal(t, errors.ErrorTypeInput, errors.TypeOf(err))
	}

	// Stored geometry untouched
	assert.Equal(t, sampleSettings, readFile(t, path))
}

func TestNewContext_DefaultCommentFlag(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	configPath := filepath.Join(t.TempDir(), ".jsettings.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("default_comment: from file\n"), 0o644))

	CLI.Config = configPath
	CLI.Header = "from flag"

	ctx, err := newContext()
	require.NoError(t, err)
	assert.Equal(t, "from flag", ctx.Config.DefaultComment)
}

func TestNewContext_UsesConfigFile(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	configPath := filepath.Join(t.TempDir(), ".jsettings.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("atomic: true\nkeys:\n  case: camel\n"), 0o644))

	CLI.Config = configPath
	CLI.NoAtomic = true

	ctx, err := newContext()
	require.NoError(t, err)
	assert.False(t, ctx.Config.Atomic)
	assert.Equal(t, config.CaseCamel, ctx.Config.Keys.Case)
}

func TestNewContext_InvalidConfig(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	configPath := filepath.Join(t.TempDir(), ".jsettings.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("keys: [broken"), 0o644))
	CLI.Config = configPath

	_, err := newContext()
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
}
