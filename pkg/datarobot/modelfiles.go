package datarobot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// ModelFile maps a local file to its path inside a model or application package.
type ModelFile struct {
	Source string `yaml:"source" validate:"required"`
	Target string `yaml:"target" validate:"required"`
}

// CollectModelFiles traverses a directory and lists every file with its package path.
// Hidden files are skipped and package paths always use forward slashes.
func CollectModelFiles(localDir string) ([]ModelFile, error) {
	var files []ModelFile

	err := filepath.Walk(localDir, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path %s: %w", filePath, err)
		}

		// Skip hidden files and system files
		if strings.HasPrefix(info.Name(), ".") && filePath != localDir {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(localDir, filePath)
		if err != nil {
			return fmt.Errorf("error calculating relative path: %w", err)
		}

		files = append(files, ModelFile{
			Source: filePath,
			Target: filepath.ToSlash(relPath),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error collecting files of %s: %w", localDir, err)
	}

	return files, nil
}

// toProviderFiles renders files the way the provider expects them: a list of
// [source, target] pairs.
func toProviderFiles(files []ModelFile) pulumi.Input {
	pairs := make([]interface{}, len(files))
	for i, f := range files {
		pairs[i] = []interface{}{f.Source, f.Target}
	}

	return pulumi.Any(pairs)
}
