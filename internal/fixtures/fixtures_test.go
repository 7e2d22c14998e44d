package fixtures_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/derluke/pulumi-datarobot-tests/internal/fixtures"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(content)
}

func TestModelFolder(t *testing.T) {
	t.Parallel()

	fx, err := fixtures.New(t.TempDir())
	require.NoError(t, err)

	dir, err := fx.ModelFolder()
	require.NoError(t, err)

	assert.Equal(t, "scikit-learn==1.4.0", readFile(t, filepath.Join(dir, "requirements.txt")))
	assert.Contains(t, readFile(t, filepath.Join(dir, "custom.py")), "42 for _ in range")

	var metadata fixtures.ModelMetadata
	require.NoError(t, yaml.Unmarshal([]byte(readFile(t, filepath.Join(dir, "model-metadata.yaml"))), &metadata))
	assert.Equal(t, fixtures.DefaultModelMetadata(), metadata)
	assert.Equal(t, "pytest_credential", metadata.RuntimeParameterDefinitions[0].FieldName)
}

func TestUpdatedModelFolder(t *testing.T) {
	t.Parallel()

	fx, err := fixtures.New(t.TempDir())
	require.NoError(t, err)

	another, err := fx.AnotherModelFolder()
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(another, "requirements.txt"))

	updated, err := fx.UpdatedModelFolder()
	require.NoError(t, err)
	assert.Equal(t, another, updated)
	assert.Equal(t, "scikit-learn==1.4.2", readFile(t, filepath.Join(updated, "requirements.txt")))
	assert.Equal(t, "foo", readFile(t, filepath.Join(updated, "files", "file1")))
}

func TestAnotherModelFolder_ClearsEarlierContent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fx, err := fixtures.New(root)
	require.NoError(t, err)

	_, err = fx.UpdatedModelFolder()
	require.NoError(t, err)

	// a later session reusing the same root
	next, err := fixtures.New(root)
	require.NoError(t, err)

	dir, err := next.AnotherModelFolder()
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "requirements.txt"))
	assert.NoDirExists(t, filepath.Join(dir, "files"))
	assert.FileExists(t, filepath.Join(dir, "custom.py"))
	assert.FileExists(t, filepath.Join(dir, "model-metadata.yaml"))
}

func TestModelFiles(t *testing.T) {
	t.Parallel()

	fx, err := fixtures.New(t.TempDir())
	require.NoError(t, err)

	files, err := fx.ModelFiles()
	require.NoError(t, err)

	targets := make([]string, 0, len(files))
	for _, f := range files {
		assert.FileExists(t, f.Source)
		targets = append(targets, f.Target)
	}
	assert.ElementsMatch(t, []string{"custom.py", "model-metadata.yaml", "requirements.txt"}, targets)
}

func TestAppFolder(t *testing.T) {
	t.Parallel()

	fx, err := fixtures.New(t.TempDir())
	require.NoError(t, err)

	dir, err := fx.AppFolder()
	require.NoError(t, err)
	assert.Equal(t, "streamlit==1.29.0\n", readFile(t, filepath.Join(dir, "requirements.txt")))

	for _, name := range []string{"requirements.txt", "app.py", "start-app.sh"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(fixtures.AppModTime), "%s should keep the fixed modification time", name)
	}

	modified, err := fx.ModifiedAppFolder()
	require.NoError(t, err)
	assert.Equal(t, dir, modified)
	assert.Equal(t, "streamlit==1.28.0", readFile(t, filepath.Join(dir, "requirements.txt")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("x"), 0o600))
	_, err = fx.AppFolder()
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "stale.txt"))
}
