package drclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const inferenceServerStartingMessage = "Inference server is starting"

var (
	// ErrInferenceServerStarting is matched by API errors reporting a cold inference server.
	ErrInferenceServerStarting = errors.New("inference server is starting")
	// ErrInferenceServerTimeout is returned when the inference server did not start in time.
	ErrInferenceServerTimeout = errors.New("timed out waiting for the inference server")
)

// APIError is a non-2xx response of the DataRobot API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("datarobot api error (status %d): %s", e.StatusCode, e.Message)
}

// Is reports server errors announcing a starting inference server as ErrInferenceServerStarting.
func (e *APIError) Is(target error) bool {
	return target == ErrInferenceServerStarting &&
		e.StatusCode >= http.StatusInternalServerError &&
		strings.Contains(e.Message, inferenceServerStartingMessage)
}

// IsInferenceServerStarting reports whether err means the deployment is still warming up.
func IsInferenceServerStarting(err error) bool {
	return errors.Is(err, ErrInferenceServerStarting)
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			message = payload.Message
		case payload.Error != "":
			message = payload.Error
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
