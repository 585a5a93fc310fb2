package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hbnb/pkg/adapters/fs"
	"github.com/aretw0/hbnb/pkg/core"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestExecAndInspect(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	store := filepath.Join(dir, "file.json")

	out := run(t, "exec", "--file", store, `create User first_name="Ada"`, "count User", "show User nope")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.NotEmpty(t, lines[0])
	assert.Equal(t, "1", lines[1])
	assert.Equal(t, "** no instance found **", lines[2])

	out = run(t, "exec", "--file", store, "count User")
	assert.Equal(t, "1\n", out, "records persist between runs")

	var state map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(run(t, "inspect", "--file", store)), &state))
	assert.Contains(t, state, "file-storage")
	assert.Contains(t, state, "service")

	var storage fs.StorageState
	require.NoError(t, json.Unmarshal(state["file-storage"], &storage))
	assert.Equal(t, store, storage.Path)
	assert.Equal(t, 1, storage.Records)
}

func TestVersion(t *testing.T) {
	out := run(t, "version")
	assert.True(t, strings.HasPrefix(out, "hbnb version "))
}

func TestBuildTree(t *testing.T) {
	tree := buildTree(
		fs.StorageState{Path: "file.json", Format: "json", WatcherActive: true},
		core.ServiceState{Records: 3, PerKind: map[string]int{"User": 2, "Place": 1}},
	)

	require.Len(t, tree.Children, 2)
	storage, registry := tree.Children[0], tree.Children[1]
	assert.Equal(t, "running", storage.Status)
	assert.Equal(t, "running", storage.Children[0].Status)

	require.Len(t, registry.Children, 2)
	assert.Equal(t, "Place", registry.Children[0].Name, "kinds are sorted by name")
	assert.Equal(t, "1", registry.Children[0].Metadata["records"])
	assert.Equal(t, "2", registry.Children[1].Metadata["records"])

	failed := buildTree(fs.StorageState{LoadError: "boom"}, core.ServiceState{})
	assert.Equal(t, "failed", failed.Children[0].Status)
	assert.Equal(t, "suspended", failed.Children[0].Children[0].Status)
}
