// Package fixtures writes the model and application folders the lifecycle
// programs deploy. Every folder is cleared and rewritten on each call so
// repeated runs see identical content.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/derluke/pulumi-datarobot-tests/pkg/datarobot"
)

const (
	// SklearnDropInEnvironmentID is the platform's scikit-learn drop-in environment.
	SklearnDropInEnvironmentID = "5e8c889607389fe0f466c72d"
	// SklearnDropInEnvironmentName is the display name of SklearnDropInEnvironmentID.
	SklearnDropInEnvironmentName = "[DataRobot] Python 3.11 Scikit-Learn Drop-In"
	// StreamlitEnvironmentID is the platform's Streamlit application environment.
	StreamlitEnvironmentID = "6542cd582a9d3d51bf4ac71e"

	// CredentialParameterName is the runtime parameter declared in the model metadata.
	CredentialParameterName = "pytest_credential"
)

// AppModTime is the fixed modification time of application files.
var AppModTime = time.Unix(1701797283, 0)

const customPy = `def load_model(input_dir):
    return ''

def score(data, model, **kwargs):
    import pandas as pd
    preds = pd.DataFrame([42 for _ in range(data.shape[0])], columns=["Predictions"])
    return preds
`

const startAppScript = `#!/usr/bin/env bash
echo "Starting App"

streamlit run app.py
`

const appPy = `import streamlit as st

st.write('Hello World!')
`

// RuntimeParameterDefinition declares a runtime parameter in model-metadata.yaml.
type RuntimeParameterDefinition struct {
	FieldName string `yaml:"fieldName"`
	Type      string `yaml:"type"`
}

// ModelMetadata is the content of model-metadata.yaml.
type ModelMetadata struct {
	Name                        string                       `yaml:"name"`
	Type                        string                       `yaml:"type"`
	TargetType                  string                       `yaml:"targetType"`
	RuntimeParameterDefinitions []RuntimeParameterDefinition `yaml:"runtimeParameterDefinitions"`
}

// DefaultModelMetadata declares the credential runtime parameter of the test model.
func DefaultModelMetadata() ModelMetadata {
	return ModelMetadata{
		Name:       "pytest custom model",
		Type:       "inference",
		TargetType: "regression",
		RuntimeParameterDefinitions: []RuntimeParameterDefinition{
			{FieldName: CredentialParameterName, Type: datarobot.RuntimeParameterTypeCredential},
		},
	}
}

// Fixtures writes fixture folders below Root.
type Fixtures struct {
	Root string
}

// New creates the root directory and returns Fixtures writing into it.
func New(root string) (*Fixtures, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fixtures root %s: %w", root, err)
	}
	if err := os.MkdirAll(absRoot, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create fixtures root %s: %w", absRoot, err)
	}

	return &Fixtures{Root: absRoot}, nil
}

// ModelFolder is the model folder with metadata and scikit-learn 1.4.0 requirements.
func (f *Fixtures) ModelFolder() (string, error) {
	dir, err := f.modelFolderWithMetadata("custom_model")
	if err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, "requirements.txt"), "scikit-learn==1.4.0"); err != nil {
		return "", err
	}

	return dir, nil
}

// AnotherModelFolder is a second model folder holding only the model and its metadata.
func (f *Fixtures) AnotherModelFolder() (string, error) {
	return f.modelFolderWithMetadata("another_custom_model")
}

// UpdatedModelFolder extends AnotherModelFolder with scikit-learn 1.4.2 requirements and files/file1.
func (f *Fixtures) UpdatedModelFolder() (string, error) {
	dir, err := f.AnotherModelFolder()
	if err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, "requirements.txt"), "scikit-learn==1.4.2"); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, "files", "file1"), "foo"); err != nil {
		return "", err
	}

	return dir, nil
}

// ModelFiles lists the files of ModelFolder for the explicit file list mode.
func (f *Fixtures) ModelFiles() ([]datarobot.ModelFile, error) {
	dir, err := f.ModelFolder()
	if err != nil {
		return nil, err
	}

	return datarobot.CollectModelFiles(dir)
}

// AppFolder is the Streamlit application folder pinned to streamlit 1.29.0.
func (f *Fixtures) AppFolder() (string, error) {
	return f.appFolder("streamlit==1.29.0\n")
}

// ModifiedAppFolder rewrites the application folder pinned to streamlit 1.28.0.
func (f *Fixtures) ModifiedAppFolder() (string, error) {
	return f.appFolder("streamlit==1.28.0")
}

func (f *Fixtures) modelFolderWithMetadata(name string) (string, error) {
	dir, err := f.resetDir(name)
	if err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, "custom.py"), customPy); err != nil {
		return "", err
	}

	metadata, err := yaml.Marshal(DefaultModelMetadata())
	if err != nil {
		return "", fmt.Errorf("failed to encode model metadata: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "model-metadata.yaml"), string(metadata)); err != nil {
		return "", err
	}

	return dir, nil
}

func (f *Fixtures) appFolder(requirements string) (string, error) {
	dir, err := f.resetDir("app")
	if err != nil {
		return "", err
	}
	files := []struct {
		name    string
		content string
	}{
		{"requirements.txt", requirements},
		{"app.py", appPy},
		{"start-app.sh", startAppScript},
	}

	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if err := writeFile(path, file.content); err != nil {
			return "", err
		}
		if err := os.Chtimes(path, AppModTime, AppModTime); err != nil {
			return "", fmt.Errorf("failed to set modification time of %s: %w", path, err)
		}
	}

	return dir, nil
}

// resetDir removes any content left in the named folder by earlier calls.
func (f *Fixtures) resetDir(name string) (string, error) {
	dir := filepath.Join(f.Root, name)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", dir, err)
	}

	return dir, nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
