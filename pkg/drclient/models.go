package drclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// RuntimeParameter is a runtime parameter of a custom model version.
type RuntimeParameter struct {
	FieldName    string `json:"fieldName"`
	Type         string `json:"type"`
	CurrentValue any    `json:"currentValue"`
	DefaultValue any    `json:"defaultValue"`
	Description  string `json:"description,omitempty"`
}

// CustomModelVersion is a version of a custom model.
type CustomModelVersion struct {
	ID                string             `json:"id"`
	CustomModelID     string             `json:"customModelId"`
	Label             string             `json:"label"`
	VersionMajor      int                `json:"versionMajor"`
	VersionMinor      int                `json:"versionMinor"`
	BaseEnvironmentID string             `json:"baseEnvironmentId"`
	MaximumMemory     int64              `json:"maximumMemory,omitempty"`
	RuntimeParameters []RuntimeParameter `json:"runtimeParameters"`
	Items             []CustomModelItem  `json:"items"`
}

// CustomModelItem is a file of a custom model version.
type CustomModelItem struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
}

// CustomModel is a custom inference model with its latest version.
type CustomModel struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	TargetType    string             `json:"targetType"`
	TargetName    string             `json:"targetName"`
	LatestVersion CustomModelVersion `json:"latestVersion"`
}

// RuntimeParameter returns the runtime parameter with the given field name.
func (v CustomModelVersion) RuntimeParameter(fieldName string) (RuntimeParameter, bool) {
	for _, param := range v.RuntimeParameters {
		if param.FieldName == fieldName {
			return param, true
		}
	}

	return RuntimeParameter{}, false
}

// GetCustomModel reads a custom model and its latest version.
func (c *Client) GetCustomModel(ctx context.Context, customModelID string) (*CustomModel, error) {
	var model CustomModel
	if err := c.getJSON(ctx, "/customModels/"+url.PathEscape(customModelID)+"/", &model); err != nil {
		return nil, fmt.Errorf("failed to get custom model %s: %w", customModelID, err)
	}

	return &model, nil
}

// GetCustomModelVersion reads one version of a custom model.
func (c *Client) GetCustomModelVersion(ctx context.Context, customModelID, versionID string) (*CustomModelVersion, error) {
	var version CustomModelVersion
	path := "/customModels/" + url.PathEscape(customModelID) + "/versions/" + url.PathEscape(versionID) + "/"
	if err := c.getJSON(ctx, path, &version); err != nil {
		return nil, fmt.Errorf("failed to get custom model version %s: %w", versionID, err)
	}

	return &version, nil
}

// DownloadCustomModelVersion streams the zip archive of a custom model version to w.
func (c *Client) DownloadCustomModelVersion(ctx context.Context, customModelID, versionID string, w io.Writer) (int64, error) {
	path := "/customModels/" + url.PathEscape(customModelID) + "/versions/" + url.PathEscape(versionID) + "/download/"
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/zip")

	resp, err := c.do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download custom model version %s: %w", versionID, err)
	}
	defer resp.Body.Close()

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, fmt.Errorf("failed to read custom model version archive: %w", err)
	}

	return written, nil
}
