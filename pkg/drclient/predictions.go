package drclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Prediction is one scored row as returned by the prediction API.
type Prediction struct {
	RowID            int               `json:"rowId"`
	Prediction       any               `json:"prediction"`
	PredictionValues []PredictionValue `json:"predictionValues,omitempty"`
}

// PredictionValue is the score of one class label.
type PredictionValue struct {
	Label any     `json:"label"`
	Value float64 `json:"value"`
}

type predictionResponse struct {
	Data []Prediction `json:"data"`
}

// Predict scores records against a deployment. Records are sent as a JSON array of rows.
func (c *Client) Predict(ctx context.Context, deploymentID string, records []map[string]any) ([]Prediction, error) {
	if deploymentID == "" {
		return nil, fmt.Errorf("deployment id is required")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/deployments/"+url.PathEscape(deploymentID)+"/predictions", records)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var predictions predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictions); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}

	return predictions.Data, nil
}

// PredictWithRetry scores records, retrying while the deployment's inference server starts.
// Any other error is returned as is. Once the maximum wait is exceeded the error wraps
// ErrInferenceServerTimeout.
func (c *Client) PredictWithRetry(ctx context.Context, deploymentID string, records []map[string]any) ([]Prediction, error) {
	start := time.Now()

	operation := func() ([]Prediction, error) {
		predictions, err := c.Predict(ctx, deploymentID, records)
		if err == nil {
			return predictions, nil
		}
		if !IsInferenceServerStarting(err) {
			return nil, backoff.Permanent(err)
		}
		if time.Since(start) > c.maxWait {
			return nil, backoff.Permanent(fmt.Errorf("%w: server did not start within %s", ErrInferenceServerTimeout, c.maxWait))
		}

		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Info("inference server is starting, retrying",
			zap.String("deployment_id", deploymentID),
			zap.Duration("retry_in", wait),
			zap.Error(err))
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(c.retryInterval), ctx)

	return backoff.RetryNotifyWithData(operation, policy, notify)
}
