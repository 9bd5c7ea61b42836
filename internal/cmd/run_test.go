package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	if stdin != "" {
		root.SetIn(strings.NewReader(stdin))
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// testConfig writes a config file with history redirected into the test's
// temp space so runs never touch the working directory.
func testConfig(t *testing.T, historyEnabled bool) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`history:
  enabled: %v
  db_path: %s
`, historyEnabled, filepath.Join(dir, "history.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCommandValidation(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	cfg := testConfig(t, false)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no sources",
			args:    []string{"run", "--keyword", "5.4.4", "--dest", dest, "--config", cfg},
			wantErr: "no source folders",
		},
		{
			name:    "no keywords",
			args:    []string{"run", "--source", src, "--dest", dest, "--config", cfg},
			wantErr: "no keywords",
		},
		{
			name:    "no destination",
			args:    []string{"run", "--source", src, "--keyword", "5.4.4", "--config", cfg},
			wantErr: "no destination",
		},
		{
			name:    "missing source",
			args:    []string{"run", "--source", filepath.Join(src, "missing"), "--keyword", "5.4.4", "--dest", dest, "--config", cfg},
			wantErr: "not accessible",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunCommandCopiesMatches(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{
		"5.4.4_batch/report_OF.xlsx": "spreadsheet",
		"5.4.4_batch/capture.dxd":    "data",
		"5.4.4_batch/ignored.txt":    "not a target",
	})

	out, err := execute(t, "",
		"run", "--source", src, "--keyword", "OF", "--keyword", "5.4.4",
		"--dest", dest, "--config", testConfig(t, false))
	require.NoError(t, err, "output: %s", out)

	assert.FileExists(t, filepath.Join(dest, "5.4.4_batch", "report_OF.xlsx"))
	assert.FileExists(t, filepath.Join(dest, "5.4.4_batch", "capture.dxd"))
	assert.NoFileExists(t, filepath.Join(dest, "5.4.4_batch", "ignored.txt"))
	assert.Contains(t, out, "Files copied: 2")
}

func TestRunCommandPromptDeclined(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	files := make(map[string]string, 21)
	for i := 0; i < 21; i++ {
		files[fmt.Sprintf("5.4.4_batch/capture_%02d.dxd", i)] = fmt.Sprintf("content %d", i)
	}
	writeTree(t, src, files)

	out, err := execute(t, "n\n",
		"run", "--source", src, "--keyword", "5.4.4",
		"--dest", dest, "--config", testConfig(t, false))
	require.NoError(t, err)

	assert.Contains(t, out, "Proceed with copy?")
	assert.Contains(t, out, "Files copied: 0")
	entries, readErr := os.ReadDir(dest)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "declined run must not copy anything")
}

func TestRunCommandAutoYesSkipsPrompt(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	files := make(map[string]string, 21)
	for i := 0; i < 21; i++ {
		files[fmt.Sprintf("5.4.4_batch/capture_%02d.dxd", i)] = fmt.Sprintf("content %d", i)
	}
	writeTree(t, src, files)

	out, err := execute(t, "",
		"run", "--source", src, "--keyword", "5.4.4",
		"--dest", dest, "--yes", "--config", testConfig(t, false))
	require.NoError(t, err)

	assert.NotContains(t, out, "Proceed with copy?")
	assert.Contains(t, out, "Files copied: 21")
}

func TestRunCommandRecordsHistory(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"5.4.4_batch/capture.dxd": "data"})
	cfg := testConfig(t, true)

	_, err := execute(t, "",
		"run", "--source", src, "--keyword", "5.4.4",
		"--dest", dest, "--config", cfg)
	require.NoError(t, err)

	out, err := execute(t, "", "history", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "copied 1/1")
	assert.Contains(t, out, dest)
}

func TestRunCommandNoHistoryFlag(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"5.4.4_batch/capture.dxd": "data"})
	cfg := testConfig(t, true)

	_, err := execute(t, "",
		"run", "--source", src, "--keyword", "5.4.4",
		"--dest", dest, "--no-history", "--config", cfg)
	require.NoError(t, err)

	out, err := execute(t, "", "history", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No run history recorded yet.")
}

func TestHistoryExport(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"5.4.4_batch/capture.dxd": "data"})
	cfg := testConfig(t, true)

	_, err := execute(t, "",
		"run", "--source", src, "--keyword", "5.4.4",
		"--dest", dest, "--config", cfg)
	require.NoError(t, err)

	exportPath := filepath.Join(t.TempDir(), "runs.json")
	out, err := execute(t, "", "history", "--config", cfg, "--export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported run history")

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"runs"`)
	assert.Contains(t, string(data), `"completed"`)
}

func TestSearchCommandListsWithoutCopying(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"5.4.4_batch/report_OF.xlsx": "spreadsheet",
		"5.4.4_batch/plain.xlsx":     "no pattern keyword",
	})

	out, err := execute(t, "",
		"search", "--source", src, "--keyword", "OF", "--keyword", "5.4.4",
		"--config", testConfig(t, false))
	require.NoError(t, err)

	assert.Contains(t, out, "report_OF.xlsx")
	assert.NotContains(t, out, "plain.xlsx")
	assert.Contains(t, out, "1 matching files.")
}

func TestSearchCommandNoValidKeywords(t *testing.T) {
	_, err := execute(t, "",
		"search", "--source", t.TempDir(), "--keyword", "banana",
		"--config", testConfig(t, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid keywords")
}

func TestReadYes(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"", false},
		{"anything else\n", false},
	}
	for _, tt := range tests {
		if got := readYes(strings.NewReader(tt.input)); got != tt.want {
			t.Errorf("readYes(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()
	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"run", "search", "history"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
