package project_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/andreyvit/pyjstranslate/internal/emitter"
	"github.com/andreyvit/pyjstranslate/internal/options"
	"github.com/andreyvit/pyjstranslate/internal/project"
)

const fixtureA = `{"kind": "Module", "name": "a", "body": [
	{"kind": "Import", "names": [["b", ""]]}
]}`

const fixtureSubB = `{"kind": "Module", "name": "sub.b", "body": []}`

const fixtureBroken = `{"kind": "Module", "name": "broken", "body": [{"kind": "Bogus"}]}`

func writeFixtures(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.json"), []byte(fixtureA), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.json"), []byte(fixtureSubB), 0o644))
}

func TestDiscoverDerivesDottedModuleNamesFromPaths(t *testing.T) {
	root := t.TempDir()
	writeFixtures(t, root)

	units, err := project.Discover(root, "")
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "a", units[0].ModuleName)
	assert.Equal(t, "sub.b", units[1].ModuleName)
}

func TestCompileWritesOutputAndAggregatesNoErrorsOnSuccess(t *testing.T) {
	root := t.TempDir()
	writeFixtures(t, root)
	outDir := t.TempDir()

	units, err := project.Discover(root, "")
	require.NoError(t, err)

	results, err := project.Compile(context.Background(), units, options.Default(), outDir, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		require.NoError(t, r.Err)
		outPath := filepath.Join(outDir, r.Unit.ModuleName+".js")
		data, readErr := os.ReadFile(outPath)
		require.NoError(t, readErr)
		assert.Contains(t, string(data), r.Unit.ModuleName)
	}
}

func TestCompileCollectsPerUnitErrorsWithoutStoppingTheBatch(t *testing.T) {
	root := t.TempDir()
	writeFixtures(t, root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.json"), []byte(fixtureBroken), 0o644))

	units, err := project.Discover(root, "")
	require.NoError(t, err)
	require.Len(t, units, 3)

	results, err := project.Compile(context.Background(), units, options.Default(), t.TempDir(), 2)
	require.Error(t, err, "the aggregated multierror surfaces the one broken module")

	var sawBroken, sawGood int
	for _, r := range results {
		if r.Unit.ModuleName == "broken" {
			assert.Error(t, r.Err)
			sawBroken++
		} else {
			assert.NoError(t, r.Err)
			sawGood++
		}
	}
	assert.Equal(t, 1, sawBroken)
	assert.Equal(t, 2, sawGood)
}

func TestWriteManifestMergesDepsPerModule(t *testing.T) {
	root := t.TempDir()
	writeFixtures(t, root)
	outDir := t.TempDir()

	units, err := project.Discover(root, "")
	require.NoError(t, err)
	results, err := project.Compile(context.Background(), units, options.Default(), outDir, 1)
	require.NoError(t, err)

	manifestPath := filepath.Join(outDir, "manifest.txt")
	require.NoError(t, project.WriteManifest(results, manifestPath))

	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "a: b\n")
	assert.Contains(t, content, "sub.b: \n")
}
