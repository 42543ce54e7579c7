package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/vformat/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(logger.ResetForTest)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderDump(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", `<p id=intro>Hello</p>`)
	css := writeFile(t, dir, "extra.css", `body { margin: 0 } p { background-color: red; margin: 0 }`)

	out, err := execute(t, "render", page, "--css", css, "--dump", "--fixed-font", "--width", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "page 0: 300 x 600")
	assert.Contains(t, out, "FillRect (0, 0, 300, 16) rgba(1,0,0,1)")
	assert.Contains(t, out, `"Hello"`)
	assert.Contains(t, out, "fragments:")
	assert.Contains(t, out, "p Box (0, 0) 300x16")
}

func TestRenderPNG(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", `<div style="height: 50px; background-color: blue">x</div>`)
	png := filepath.Join(dir, "out.png")

	_, err := execute(t, "render", page, "--png", png, "--width", "120", "--height", "80")
	require.NoError(t, err)

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestRenderErrors(t *testing.T) {
	_, err := execute(t, "render")
	assert.Error(t, err)

	_, err = execute(t, "render", filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", `<p>a</p>`)
	_, err = execute(t, "render", page, "--width=-5")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "vformat")
}
